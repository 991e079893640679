package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

var _ Ledger = (*PostgresLedger)(nil)

// memLedger is an in-memory Ledger used to test recompile's ledger
// wiring without a real Postgres instance.
type memLedger struct {
	Entries []Entry
}

func (m *memLedger) Record(ctx context.Context, entry Entry) error {
	m.Entries = append(m.Entries, entry)
	return nil
}

func TestMemLedgerRecordsEntries(t *testing.T) {
	var l Ledger = &memLedger{}
	id, err := uuid.NewV4()
	require.NoError(t, err)

	entry := Entry{
		CompilationID:      id,
		Digest:             "deadbeef",
		Outcome:            OutcomeSuccess,
		OpcodeTableVersion: "1",
		CompiledAt:         time.Now(),
	}
	require.NoError(t, l.Record(context.Background(), entry))

	got := l.(*memLedger).Entries
	require.Len(t, got, 1)
	require.Equal(t, entry, got[0])
}

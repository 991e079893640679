package recompile

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/regcore/bytecode"
	"github.com/deepnoodle-ai/regcore/cache"
	"github.com/deepnoodle-ai/regcore/ledger"
	"github.com/deepnoodle-ai/regcore/lower"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/stretchr/testify/require"
)

func addSource() *bytecode.SourceCode {
	return bytecode.NewSourceCode(bytecode.SourceCodeParams{
		Name: "add",
		CodeBytes: bytecode.Assemble(
			bytecode.Instr(op.LoadConst, 0),
			bytecode.Instr(op.LoadConst, 1),
			bytecode.Instr(op.BinaryAdd, 0),
			bytecode.Instr(op.ReturnValue, 0),
		),
		NumConsts: 2,
		NumLocals: 0,
	})
}

func unsupportedSource() *bytecode.SourceCode {
	return bytecode.NewSourceCode(bytecode.SourceCodeParams{
		Name:      "yields",
		CodeBytes: bytecode.Assemble(bytecode.Instr(op.YieldValue, 0)),
		NumConsts: 0,
		NumLocals: 0,
	})
}

func TestCompileProducesLoweredBytes(t *testing.T) {
	res, err := Compile(context.Background(), addSource())
	require.NoError(t, err)
	require.False(t, res.Cached)

	prelude, err := lower.DecodePrelude(res.Bytes)
	require.NoError(t, err)
	require.Equal(t, lower.Magic, prelude.Magic)
}

func TestCompilePropagatesUnsupportedOpcode(t *testing.T) {
	_, err := Compile(context.Background(), unsupportedSource())
	require.Error(t, err)
}

func TestCompileUsesCacheOnSecondCall(t *testing.T) {
	store := newMemStore()
	d, err := New(WithCache(store))
	require.NoError(t, err)

	src := addSource()
	first, err := d.Compile(context.Background(), src)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := d.Compile(context.Background(), src)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Bytes, second.Bytes)
}

func TestCompileRecordsLedgerEntry(t *testing.T) {
	l := &memLedger{}
	d, err := New(WithLedger(l))
	require.NoError(t, err)

	_, err = d.Compile(context.Background(), addSource())
	require.NoError(t, err)
	require.Len(t, l.entries, 1)
	require.Equal(t, ledger.OutcomeSuccess, l.entries[0].Outcome)

	_, err = d.Compile(context.Background(), unsupportedSource())
	require.Error(t, err)
	require.Len(t, l.entries, 2)
	require.Equal(t, ledger.OutcomeFailure, l.entries[1].Outcome)
}

func TestNewRejectsOversizedLimits(t *testing.T) {
	_, err := New(WithMaxStack(1 << 20))
	require.Error(t, err)
}

func TestCompileEnforcesConfiguredMaxStack(t *testing.T) {
	src := bytecode.NewSourceCode(bytecode.SourceCodeParams{
		Name: "deep",
		CodeBytes: bytecode.Assemble(
			bytecode.Instr(op.LoadConst, 0),
			bytecode.Instr(op.LoadConst, 1),
			bytecode.Instr(op.LoadConst, 2),
			bytecode.Instr(op.ReturnValue, 0),
		),
		NumConsts: 3,
		NumLocals: 0,
	})

	d, err := New(WithMaxStack(2))
	require.NoError(t, err)
	_, err = d.Compile(context.Background(), src)
	require.Error(t, err)

	full, err := New()
	require.NoError(t, err)
	_, err = full.Compile(context.Background(), src)
	require.NoError(t, err)
}

func TestCompileBatchReportsPerItemOutcomes(t *testing.T) {
	results, err := CompileBatch(context.Background(), []*bytecode.SourceCode{addSource(), unsupportedSource()})
	require.Error(t, err)
	require.Len(t, results, 2)

	var sawSuccess, sawFailure bool
	for _, r := range results {
		if r.Err == nil {
			sawSuccess = true
		} else {
			sawFailure = true
		}
	}
	require.True(t, sawSuccess)
	require.True(t, sawFailure)
}

// memStore and memLedger duplicate small test fakes local to this
// package rather than exporting them from cache/ledger for testing.
type memStore struct {
	data map[cache.Digest][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[cache.Digest][]byte)}
}

func (m *memStore) Get(ctx context.Context, key cache.Digest) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Put(ctx context.Context, key cache.Digest, program []byte) error {
	m.data[key] = program
	return nil
}

type memLedger struct {
	entries []ledger.Entry
}

func (m *memLedger) Record(ctx context.Context, entry ledger.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

// Package ledger records a durable audit trail of compile attempts,
// independent of package cache's artifact store: it answers "which
// opcode-table version compiled this digest, and did it ever fail
// before succeeding" — a question a content-addressed cache alone
// cannot, since a cache only ever remembers the most recent success.
package ledger

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
)

// Outcome classifies a single recorded compile attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one row of the compile ledger.
type Entry struct {
	CompilationID      uuid.UUID
	Digest             string
	Outcome            Outcome
	OpcodeTableVersion string
	CompiledAt         time.Time
	Diagnostic         string // empty on success
}

// Ledger records compile attempts. Implementations must not be
// consulted from the pure compile path (spec.md §5): recompile.Driver
// writes to a Ledger after a Compile call completes, but never reads
// from one.
type Ledger interface {
	Record(ctx context.Context, entry Entry) error
}

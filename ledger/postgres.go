package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists compile-attempt rows to a Postgres table:
//
//	CREATE TABLE compile_ledger (
//	    compilation_id       uuid PRIMARY KEY,
//	    digest               text NOT NULL,
//	    outcome              text NOT NULL,
//	    opcode_table_version text NOT NULL,
//	    compiled_at          timestamptz NOT NULL,
//	    diagnostic           text NOT NULL DEFAULT ''
//	);
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger connects to the database identified by dsn (a
// standard postgres:// connection string).
func NewPostgresLedger(ctx context.Context, dsn string) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: connecting: %w", err)
	}
	return &PostgresLedger{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (l *PostgresLedger) Close() {
	l.pool.Close()
}

// Record inserts one row per compile attempt.
func (l *PostgresLedger) Record(ctx context.Context, entry Entry) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO compile_ledger
			(compilation_id, digest, outcome, opcode_table_version, compiled_at, diagnostic)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.CompilationID, entry.Digest, string(entry.Outcome),
		entry.OpcodeTableVersion, entry.CompiledAt, entry.Diagnostic,
	)
	if err != nil {
		return fmt.Errorf("ledger: recording %s: %w", entry.CompilationID, err)
	}
	return nil
}

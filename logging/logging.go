// Package logging configures the structured logger the recompiler's
// batch driver uses for progress and diagnostics, following the
// teacher's zerolog convention (github.com/rs/zerolog/log).
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Field names shared by every component that logs through this package,
// kept as constants so ledger correlation (recompile.Result.CompilationID)
// and log correlation use the same key.
const (
	FieldCompilationID = "compilation_id"
	FieldDigest        = "digest"
	FieldOpcode        = "opcode"
	FieldOffset        = "offset"
)

// New returns a zerolog.Logger writing to w with a timestamp and the
// "component" field set to "regcore", so multi-component log streams
// (batch driver, cache, CLI) can be filtered to just this core's lines.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("component", "regcore").Logger()
}

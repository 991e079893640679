// Package errz implements the recompiler's single failure channel.
//
// spec.md §7 names three error categories: an unsupported/malformed
// opcode encountered during registerization, a fatal invariant violation
// (malformed input or a bug in this core), and a resource-limit overflow
// (classified as unsupported per §7.3). All three are represented by the
// one Error type here, distinguished by Kind, so that callers have a
// single type to type-assert against regardless of which subsystem
// raised it.
package errz

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/regcore/op"
)

// Kind categorizes a recompilation failure.
type Kind int

const (
	// Unsupported marks an opcode the registerizer does not implement,
	// or a resource limit (REG_MAX_STACK / REG_MAX_FRAMES) exceeded.
	// Callers are expected to fall back to a reference stack interpreter.
	Unsupported Kind = iota

	// Invariant marks a fatal assertion failure: malformed input, or a
	// bug in this core (symbolic stack underflow, missing fall-through
	// neighbor at lowering time, destination-count mismatch, ...).
	Invariant

	// ResourceLimit marks REG_MAX_STACK/REG_MAX_FRAMES overflow
	// specifically. It is a sub-classification of Unsupported: IsUnsupported
	// returns true for it too, but callers wanting to distinguish "resource
	// exhaustion" from "opcode we've never heard of" for metrics can switch
	// on Kind directly.
	ResourceLimit
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case Invariant:
		return "invariant violation"
	case ResourceLimit:
		return "resource limit"
	default:
		return "error"
	}
}

// Error is the recompiler's failure type.
type Error struct {
	Kind    Kind
	Opcode  op.Code // zero value (Invalid) when not opcode-specific
	Offset  int     // source byte offset; -1 when not applicable
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Opcode != op.Invalid {
		msg += fmt.Sprintf(" (opcode=%s", op.Name(e.Opcode))
		if e.Offset >= 0 {
			msg += fmt.Sprintf(" offset=%d", e.Offset)
		}
		msg += ")"
	} else if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset=%d)", e.Offset)
	}
	return msg
}

// Unwrap returns the underlying cause, if any, for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Unsupportedf builds an Unsupported error naming the offending opcode.
func Unsupportedf(offset int, code op.Code, format string, args ...any) *Error {
	return &Error{
		Kind:    Unsupported,
		Opcode:  code,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}

// Invariantf builds a fatal Invariant error.
func Invariantf(format string, args ...any) *Error {
	return &Error{
		Kind:    Invariant,
		Offset:  -1,
		Message: fmt.Sprintf(format, args...),
	}
}

// ResourceLimitf builds a ResourceLimit error, classified as Unsupported
// per spec.md §7.3.
func ResourceLimitf(offset int, format string, args ...any) *Error {
	return &Error{
		Kind:    ResourceLimit,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsUnsupported reports whether err is an Unsupported or ResourceLimit
// Error — the two categories from which callers should fall back to a
// reference stack interpreter rather than treat the failure as fatal.
func IsUnsupported(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == Unsupported || e.Kind == ResourceLimit
}

// IsFatal reports whether err is an Invariant Error: a bug in this core
// or malformed input that must fault the compilation rather than
// silently miscompile.
func IsFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == Invariant
}

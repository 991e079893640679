package errz

import (
	"fmt"
	"testing"

	"github.com/deepnoodle-ai/regcore/op"
	"github.com/stretchr/testify/require"
)

func TestUnsupportedf(t *testing.T) {
	err := Unsupportedf(12, op.YieldValue, "opcode not implemented")
	require.True(t, IsUnsupported(err))
	require.False(t, IsFatal(err))
	require.Equal(t, "unsupported: opcode not implemented (opcode=YIELD_VALUE offset=12)", err.Error())
}

func TestInvariantf(t *testing.T) {
	err := Invariantf("symbolic stack underflow")
	require.False(t, IsUnsupported(err))
	require.True(t, IsFatal(err))
	require.Equal(t, "invariant violation: symbolic stack underflow", err.Error())
}

func TestResourceLimitfIsUnsupported(t *testing.T) {
	err := ResourceLimitf(4, "REG_MAX_STACK exceeded")
	require.True(t, IsUnsupported(err))
	require.False(t, IsFatal(err))
}

func TestWrappedError(t *testing.T) {
	base := Invariantf("bad state")
	wrapped := fmt.Errorf("compile failed: %w", base)
	require.True(t, IsFatal(wrapped))
}

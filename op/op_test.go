package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstrSize(t *testing.T) {
	info, ok := GetInfo(LoadConst)
	require.True(t, ok)
	require.Equal(t, 3, info.InstrSize())

	info, ok = GetInfo(PopTop)
	require.True(t, ok)
	require.Equal(t, 1, info.InstrSize())
}

func TestIsPure(t *testing.T) {
	pure := []Code{LoadLocals, LoadConst, LoadName, LoadGlobal, LoadFast, LoadDeref, LoadClosure, StoreFast,
		BuildTuple, BuildList, BuildSet, BuildMap, MakeClosure, ConstIndex}
	for _, c := range pure {
		info, ok := GetInfo(c)
		require.True(t, ok, Name(c))
		require.True(t, info.IsPure, Name(c))
	}

	impure := []Code{BinaryAdd, StoreAttr, CallFunction, ForIter}
	for _, c := range impure {
		info, ok := GetInfo(c)
		require.True(t, ok, Name(c))
		require.False(t, info.IsPure, Name(c))
	}
}

func TestRegisterizable(t *testing.T) {
	require.True(t, Registerizable(LoadConst))
	require.False(t, Registerizable(EndFinally))
	require.False(t, Registerizable(YieldValue))
	require.False(t, Registerizable(MakeFunction))
}

func TestGetArg(t *testing.T) {
	code := []byte{byte(LoadConst), 0x34, 0x12}
	require.Equal(t, 0x1234, GetArg(code, 0))
}

func TestUnknownOpcode(t *testing.T) {
	_, ok := GetInfo(Code(255))
	require.False(t, ok)
	require.Equal(t, "UNKNOWN", Name(Code(255)))
}

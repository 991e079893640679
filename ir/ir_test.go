package ir

import (
	"testing"

	"github.com/deepnoodle-ai/regcore/op"
	"github.com/stretchr/testify/require"
)

func TestAllocBlockUniqueness(t *testing.T) {
	p := NewProgram(2, 1)
	b1 := p.AllocBlock(0)
	require.Equal(t, 0, b1.Idx)

	_, ok := p.BlockAt(0)
	require.True(t, ok)

	b2 := p.AllocBlock(5)
	require.Equal(t, 1, b2.Idx)
	require.NotEqual(t, b1.PyOffset, b2.PyOffset)
}

func TestNextRegMonotonic(t *testing.T) {
	p := NewProgram(2, 1)
	require.Equal(t, 3, p.NumReg) // 2 consts + 1 local

	r1 := p.NextReg()
	r2 := p.NextReg()
	require.Equal(t, 3, r1)
	require.Equal(t, 4, r2)
	require.Equal(t, 5, p.NumReg)
}

func TestConstAndLocalReg(t *testing.T) {
	p := NewProgram(3, 2)
	require.Equal(t, 0, p.ConstReg(0))
	require.Equal(t, 2, p.ConstReg(2))
	require.Equal(t, 3, p.LocalReg(0))
	require.Equal(t, 4, p.LocalReg(1))
}

func TestOpNumInputsAndDest(t *testing.T) {
	o := &Op{Code: op.BinaryAdd, Regs: []Register{1, 2, 3}, HasDest: true}
	require.Equal(t, 2, o.NumInputs())
	require.Equal(t, Register(3), o.Dest())
	require.Equal(t, []Register{1, 2}, o.Inputs())

	o2 := &Op{Code: op.StoreGlobal, Regs: []Register{1}, HasDest: false}
	require.Equal(t, 1, o2.NumInputs())
	require.Equal(t, []Register{1}, o2.Inputs())
}

func TestDestPanicsWithoutDest(t *testing.T) {
	o := &Op{Code: op.PopTop, Regs: nil, HasDest: false}
	require.Panics(t, func() { o.Dest() })
}

func TestCompactRemovesDeadBlocks(t *testing.T) {
	p := NewProgram(0, 0)
	b0 := p.AllocBlock(0)
	b1 := p.AllocBlock(1)
	b2 := p.AllocBlock(2)
	b1.Dead = true
	p.Compact()
	require.Equal(t, []*Block{b0, b2}, p.Blocks)
}

func TestCompactOpsRemovesDeadOps(t *testing.T) {
	blk := &Block{}
	op1 := blk.AddOp(op.Nop, 0)
	op2 := blk.AddOp(op.PopTop, 0)
	op1.Dead = true
	blk.CompactOps()
	require.Equal(t, []*Op{op2}, blk.Code)
}

func TestStatsCountsOpsAndDeadOps(t *testing.T) {
	p := NewProgram(2, 1)
	b := p.AllocBlock(0)
	b.AddDestOp(op.LoadConst, 0, 0)
	live := b.AddOp(op.ReturnValue, 0, 0)
	dead := b.AddOp(op.Nop, 0)
	dead.Dead = true
	_ = live

	s := p.Stats()
	require.Equal(t, 1, s.NumBlocks)
	require.Equal(t, 3, s.NumOps)
	require.Equal(t, 1, s.NumDeadOps)
	require.Equal(t, 3, s.NumRegisters)
	require.Equal(t, 2, s.NumConsts)
	require.Equal(t, 1, s.NumLocals)
}

func TestDumpFormat(t *testing.T) {
	p := NewProgram(1, 0)
	b := p.AllocBlock(0)
	b.AddDestOp(op.LoadFast, 0, 0, 1)
	b.AddOp(op.ReturnValue, 0, 1)

	out := Dump(p)
	require.Contains(t, out, "bb_0:")
	require.Contains(t, out, "LOAD_FAST")
	require.Contains(t, out, "RETURN_VALUE")
}

package lower

import (
	"testing"

	"github.com/deepnoodle-ai/regcore/bytecode"
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/deepnoodle-ai/regcore/passes"
	"github.com/deepnoodle-ai/regcore/registerize"
	"github.com/deepnoodle-ai/regcore/symstack"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, numConsts, numLocals int, instrs ...bytecode.Instruction) *ir.Program {
	t.Helper()
	src := bytecode.NewSourceCode(bytecode.SourceCodeParams{
		Name:      "t",
		CodeBytes: bytecode.Assemble(instrs...),
		NumConsts: uint32(numConsts),
		NumLocals: uint32(numLocals),
	})
	prog := ir.NewProgram(numConsts, numLocals)
	_, err := registerize.Registerize(prog, src, symstack.New(), 0)
	require.NoError(t, err)
	return prog
}

func TestLowerPreludeRoundTrips(t *testing.T) {
	prog := compile(t, 2, 0,
		bytecode.Instr(op.LoadConst, 0),
		bytecode.Instr(op.LoadConst, 1),
		bytecode.Instr(op.BinaryAdd, 0),
		bytecode.Instr(op.ReturnValue, 0),
	)
	passes.Optimize(prog)

	buf, err := Lower(prog)
	require.NoError(t, err)

	prelude, err := DecodePrelude(buf)
	require.NoError(t, err)
	require.Equal(t, Magic, prelude.Magic)
	require.Equal(t, uint32(prog.NumReg), prelude.NumRegisters)
}

// P4: every op's decoded size, walked from the start, exactly accounts
// for the buffer and lines up with its own emitted arg/code.
func TestLowerSizeRoundTrip(t *testing.T) {
	prog := compile(t, 3, 1,
		bytecode.Instr(op.LoadFast, 0),
		bytecode.Instr(op.PopJumpIfFalse, 10),
		bytecode.Instr(op.LoadConst, 1),
		bytecode.Instr(op.ReturnValue, 0),
		bytecode.Instr(op.LoadConst, 2),
		bytecode.Instr(op.ReturnValue, 0),
	)
	passes.Optimize(prog)

	buf, err := Lower(prog)
	require.NoError(t, err)

	ops, err := DecodeOps(buf)
	require.NoError(t, err)
	require.NotEmpty(t, ops)

	var codes []op.Code
	for _, d := range ops {
		codes = append(codes, d.Code)
	}
	require.Contains(t, codes, op.PopJumpIfFalse)
	require.Contains(t, codes, op.ReturnValue)
}

// P3: the POP_JUMP_IF_FALSE label must point at the taken block's
// reg_offset, and the fall-through block must immediately follow in the
// byte stream (scenario 3).
func TestLowerIfElsePatchesTakenLabel(t *testing.T) {
	loadFast := bytecode.Instr(op.LoadFast, 0)
	popJump := bytecode.Instr(op.PopJumpIfFalse, 0)
	loadConst1 := bytecode.Instr(op.LoadConst, 1)
	ret1 := bytecode.Instr(op.ReturnValue, 0)
	loadConst2 := bytecode.Instr(op.LoadConst, 2)
	ret2 := bytecode.Instr(op.ReturnValue, 0)

	target := 10 // LOAD_FAST(3) + POP_JUMP_IF_FALSE(3) + LOAD_CONST(3) + RETURN_VALUE(1)
	popJump.Arg = target

	prog := compile(t, 3, 1, loadFast, popJump, loadConst1, ret1, loadConst2, ret2)
	passes.Optimize(prog)

	buf, err := Lower(prog)
	require.NoError(t, err)

	ops, err := DecodeOps(buf)
	require.NoError(t, err)

	var branch *DecodedOp
	for i := range ops {
		if ops[i].Code == op.PopJumpIfFalse {
			branch = &ops[i]
			break
		}
	}
	require.NotNil(t, branch)
	require.NotZero(t, branch.Label)

	// The label must land exactly on some op's decoded start offset,
	// which after CopyPropagation+DeadCodeElim is the taken block's sole
	// surviving op: RETURN_VALUE reading the constant-pool register
	// directly (LOAD_CONST 2's alias register, C+L+2 having been
	// eliminated as a dead copy — the same forwarding behavior as
	// scenario 1).
	var landed *DecodedOp
	for i := range ops {
		if int32(ops[i].Offset) == branch.Label {
			landed = &ops[i]
		}
	}
	require.NotNil(t, landed)
	require.Equal(t, op.ReturnValue, landed.Code)
	require.Equal(t, int32(2), landed.Regs[0])
}

func TestLowerReturnValueLabelUnpatched(t *testing.T) {
	prog := compile(t, 1, 0,
		bytecode.Instr(op.LoadConst, 0),
		bytecode.Instr(op.ReturnValue, 0),
	)
	passes.Optimize(prog)

	buf, err := Lower(prog)
	require.NoError(t, err)

	ops, err := DecodeOps(buf)
	require.NoError(t, err)

	last := ops[len(ops)-1]
	require.Equal(t, op.ReturnValue, last.Code)
	require.Zero(t, last.Label)
}

func TestLowerRejectsUnknownOpcode(t *testing.T) {
	prog := ir.NewProgram(0, 0)
	blk := prog.AllocBlock(0)
	blk.AddOp(op.Code(250), 0)

	_, err := Lower(prog)
	require.Error(t, err)
}

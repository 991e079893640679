package dis

import (
	"bytes"
	"testing"

	"github.com/deepnoodle-ai/regcore/bytecode"
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/lower"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/deepnoodle-ai/regcore/passes"
	"github.com/deepnoodle-ai/regcore/registerize"
	"github.com/deepnoodle-ai/regcore/symstack"
	"github.com/stretchr/testify/require"
)

func addProgram(t *testing.T) *ir.Program {
	t.Helper()
	src := bytecode.NewSourceCode(bytecode.SourceCodeParams{
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
	prog := ir.NewProgram(int(src.NumConsts()), int(src.NumLocals()))
	stack := symstack.New()
	_, err := registerize.Registerize(prog, src, stack, 0)
	require.NoError(t, err)
	return prog
}

func TestPrintIRIncludesBlockAndOps(t *testing.T) {
	prog := addProgram(t)
	var buf bytes.Buffer
	PrintIR(prog, &buf)

	out := buf.String()
	require.Contains(t, out, "bb_0:")
	require.Contains(t, out, "LOAD_FAST") // LOAD_CONST is registerized as LOAD_FAST
	require.Contains(t, out, "RETURN_VALUE")
}

func TestPrintIRIsStableAcrossRepeatedOptimize(t *testing.T) {
	prog := addProgram(t)
	passes.Optimize(prog)

	var first, second bytes.Buffer
	PrintIR(prog, &first)
	passes.Optimize(prog)
	PrintIR(prog, &second)

	require.Equal(t, first.String(), second.String())
}

func TestPrintLoweredRendersTable(t *testing.T) {
	prog := addProgram(t)
	passes.Optimize(prog)
	buf, err := lower.Lower(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, PrintLowered(buf, &out))

	rendered := out.String()
	require.Contains(t, rendered, "OFFSET")
	require.Contains(t, rendered, "OPCODE")
	require.Contains(t, rendered, "REGS")
	require.Contains(t, rendered, "RETURN_VALUE")
}

func TestPrintLoweredPropagatesDecodeErrors(t *testing.T) {
	var out bytes.Buffer
	err := PrintLowered([]byte{0x00, 0x01}, &out)
	require.Error(t, err)
}

func TestPrintStatsJSONReportsCounts(t *testing.T) {
	prog := addProgram(t)
	var buf bytes.Buffer
	require.NoError(t, PrintStatsJSON(prog, &buf))
	require.Contains(t, buf.String(), "num_blocks")
	require.Contains(t, buf.String(), "num_registers")
}

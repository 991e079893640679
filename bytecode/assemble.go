package bytecode

import "github.com/deepnoodle-ai/regcore/op"

// Instruction is a single mnemonic instruction used by Assemble to build a
// source instruction stream without manual byte arithmetic in tests.
type Instruction struct {
	Code op.Code
	Arg  int
}

// Assemble encodes a sequence of mnemonic instructions into a source
// instruction stream: opcode byte, and (when the opcode carries an
// immediate) two little-endian argument bytes. It is a test convenience
// only — production callers construct SourceCode from a real front-end's
// output.
func Assemble(instrs ...Instruction) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, byte(in.Code))
		info, ok := op.GetInfo(in.Code)
		if ok && info.HasArg {
			out = append(out, byte(in.Arg&0xff), byte((in.Arg>>8)&0xff))
		}
	}
	return out
}

// Instr is a shorthand constructor for Instruction.
func Instr(code op.Code, arg int) Instruction {
	return Instruction{Code: code, Arg: arg}
}

package lower

import (
	"encoding/binary"

	"github.com/deepnoodle-ai/regcore/errz"
	"github.com/deepnoodle-ai/regcore/op"
)

// DecodedOp is a single RMachineOp record recovered from a lowered byte
// stream, with its wire offset and byte width for a disassembler to
// print alongside the decoded fields.
type DecodedOp struct {
	Offset int
	Size   int
	Code   op.Code
	Arg    int
	Regs   []int32 // NoRegister-valued slots are left as -1
	Label  int32   // valid only when op.GetInfo(Code).IsBranch
}

// DecodePrelude reads and validates the RegisterPrelude at the start of
// a lowered byte stream.
func DecodePrelude(data []byte) (RegisterPrelude, error) {
	var p RegisterPrelude
	if len(data) < preludeSize {
		return p, errz.Invariantf("lower: truncated prelude (%d bytes)", len(data))
	}
	copy(p.Magic[:], data[0:4])
	if p.Magic != Magic {
		return p, errz.Invariantf("lower: bad magic %v", p.Magic)
	}
	p.MappedRegisters = binary.LittleEndian.Uint16(data[4:6])
	p.MappedLabels = binary.LittleEndian.Uint16(data[6:8])
	p.NumRegisters = binary.LittleEndian.Uint32(data[8:12])
	return p, nil
}

// DecodeOps walks every RMachineOp record following the prelude,
// stepping by each record's own decoded size exactly as lowering's
// second pass does, and returns them in stream order.
func DecodeOps(data []byte) ([]DecodedOp, error) {
	if _, err := DecodePrelude(data); err != nil {
		return nil, err
	}
	var out []DecodedOp
	pos := preludeSize
	for pos < len(data) {
		d, size, err := decodeOne(data, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		pos += size
	}
	return out, nil
}

func decodeOne(data []byte, pos int) (DecodedOp, int, error) {
	if pos+3 > len(data) {
		return DecodedOp{}, 0, errz.Invariantf("lower: truncated op header at offset %d", pos)
	}
	code := op.Code(data[pos])
	arg := int(binary.LittleEndian.Uint16(data[pos+1 : pos+3]))
	info, ok := op.GetInfo(code)
	if !ok {
		return DecodedOp{}, 0, errz.Invariantf("lower: unknown opcode %d at offset %d", code, pos)
	}

	base := pos + 3
	d := DecodedOp{Offset: pos, Code: code, Arg: arg}

	switch {
	case info.IsVarargs:
		if base+2 > len(data) {
			return DecodedOp{}, 0, errz.Invariantf("lower: truncated varargs header at offset %d", pos)
		}
		numRegs := int(binary.LittleEndian.Uint16(data[base : base+2]))
		base += 2
		end := base + numRegs*regSize
		if end > len(data) {
			return DecodedOp{}, 0, errz.Invariantf("lower: truncated varargs registers at offset %d", pos)
		}
		d.Regs = make([]int32, numRegs)
		for i := 0; i < numRegs; i++ {
			d.Regs[i] = int32(binary.LittleEndian.Uint32(data[base+i*regSize:]))
		}
		d.Size = end - pos
	case info.IsBranch:
		end := base + 2*regSize + 4
		if end > len(data) {
			return DecodedOp{}, 0, errz.Invariantf("lower: truncated branch op at offset %d", pos)
		}
		d.Regs = []int32{
			int32(binary.LittleEndian.Uint32(data[base:])),
			int32(binary.LittleEndian.Uint32(data[base+regSize:])),
		}
		d.Label = int32(binary.LittleEndian.Uint32(data[base+2*regSize:]))
		d.Size = end - pos
	default:
		end := base + 3*regSize
		if end > len(data) {
			return DecodedOp{}, 0, errz.Invariantf("lower: truncated op at offset %d", pos)
		}
		d.Regs = []int32{
			int32(binary.LittleEndian.Uint32(data[base:])),
			int32(binary.LittleEndian.Uint32(data[base+regSize:])),
			int32(binary.LittleEndian.Uint32(data[base+2*regSize:])),
		}
		d.Size = end - pos
	}
	return d, d.Size, nil
}

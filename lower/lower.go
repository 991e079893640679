// Package lower serializes an optimized ir.Program into the flat
// register-machine byte format a downstream execution engine consumes:
// a RegisterPrelude header followed by a stream of RMachineOp records,
// one per live op in block insertion order (spec.md §4.F).
//
// The format is a fixed-offset binary layout, not a self-describing
// object encoding: branch targets are patched in a second pass by
// writing a raw byte offset directly into an already-emitted record, a
// shape encoding/binary's fixed-width primitives serve directly and
// that a schema-driven format (protobuf, CBOR) would only complicate,
// since those formats are not addressable by byte offset without
// re-deriving their own framing.
package lower

import (
	"encoding/binary"

	"github.com/deepnoodle-ai/regcore/errz"
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
)

// Magic identifies the lowered register-machine byte format.
var Magic = [4]byte{'R', 'G', 'C', '1'}

// regSize is the wire width, in bytes, of a single Register value.
const regSize = 4

// preludeSize is the wire width, in bytes, of RegisterPrelude.
const preludeSize = 4 + 2 + 2 + 4

// RegisterPrelude is the fixed header written once at the start of a
// lowered byte stream.
type RegisterPrelude struct {
	Magic           [4]byte
	MappedRegisters uint16
	MappedLabels    uint16
	NumRegisters    uint32
}

// noRegister is the wire encoding for an absent register slot.
const noRegister int32 = -1

// opSize returns the encoded byte width of o, mirroring
// RCompilerUtil::op_size: varargs ops grow with their register count,
// branch and regular ops are fixed width.
func opSize(o *ir.Op) (int, error) {
	info, ok := op.GetInfo(o.Code)
	if !ok {
		return 0, errz.Invariantf("lower: unknown opcode %d", o.Code)
	}
	switch {
	case info.IsVarargs:
		return 1 + 2 + 2 + len(o.Regs)*regSize, nil
	case info.IsBranch:
		return 1 + 2 + 2*regSize + 4, nil
	default:
		return 1 + 2 + 3*regSize, nil
	}
}

// putRegister appends a register value in wire form, mapping absent
// slots to noRegister and failing loudly on truncation rather than
// silently wrapping a register index that no longer fits (mirrors the
// overflow assert in RCompilerUtil::write_op).
func putRegister(buf []byte, r ir.Register) ([]byte, error) {
	v := int32(r)
	if int(v) != r {
		return nil, errz.Invariantf("lower: register %d does not fit in the wire encoding", r)
	}
	return binary.LittleEndian.AppendUint32(buf, uint32(v)), nil
}

func regAt(regs []ir.Register, i int) ir.Register {
	if i >= len(regs) {
		return ir.NoRegister
	}
	return regs[i]
}

// writeOp appends the wire encoding of o to buf, leaving a branch op's
// label field zeroed for the second pass to patch.
func writeOp(buf []byte, o *ir.Op) ([]byte, error) {
	info, ok := op.GetInfo(o.Code)
	if !ok {
		return nil, errz.Invariantf("lower: unknown opcode %d", o.Code)
	}

	buf = append(buf, byte(o.Code))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(o.Arg))

	switch {
	case info.IsVarargs:
		if len(o.Regs) > 0xffff {
			return nil, errz.Invariantf("lower: varargs op %s carries too many registers (%d)", op.Name(o.Code), len(o.Regs))
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(o.Regs)))
		for _, r := range o.Regs {
			var err error
			buf, err = putRegister(buf, r)
			if err != nil {
				return nil, err
			}
		}
	case info.IsBranch:
		if len(o.Regs) > 2 {
			return nil, errz.Invariantf("lower: branch op %s carries more than two registers", op.Name(o.Code))
		}
		var err error
		if buf, err = putRegister(buf, regAt(o.Regs, 0)); err != nil {
			return nil, err
		}
		if buf, err = putRegister(buf, regAt(o.Regs, 1)); err != nil {
			return nil, err
		}
		buf = binary.LittleEndian.AppendUint32(buf, 0) // label, patched in pass 2
	default:
		if len(o.Regs) > 3 {
			return nil, errz.Invariantf("lower: op %s carries more than three registers", op.Name(o.Code))
		}
		for i := 0; i < 3; i++ {
			var err error
			if buf, err = putRegister(buf, regAt(o.Regs, i)); err != nil {
				return nil, err
			}
		}
	}
	return buf, nil
}

// Lower serializes prog's live blocks and ops into the flat
// register-machine byte format, running the two-pass emit spec.md §4.F
// describes: pass one writes the prelude and every op with branch
// labels zeroed, recording each block's RegOffset; pass two walks the
// same blocks again, stepping a cursor by each op's wire size, and
// patches every non-RETURN_VALUE branch's label field with its target
// block's RegOffset.
func Lower(prog *ir.Program) ([]byte, error) {
	buf := make([]byte, 0, preludeSize+64*len(prog.Blocks))
	buf = append(buf, Magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, 0) // mapped_registers
	buf = binary.LittleEndian.AppendUint16(buf, 0) // mapped_labels
	buf = binary.LittleEndian.AppendUint32(buf, uint32(prog.NumReg))

	live := make([]*ir.Block, 0, len(prog.Blocks))
	for _, blk := range prog.Blocks {
		if blk.Dead {
			continue
		}
		live = append(live, blk)

		blk.RegOffset = len(buf)
		for _, o := range blk.Code {
			if o.Dead {
				continue
			}
			var err error
			buf, err = writeOp(buf, o)
			if err != nil {
				return nil, err
			}
		}
	}

	pos := preludeSize
	for i, blk := range live {
		var last *ir.Op
		for _, o := range blk.Code {
			if o.Dead {
				continue
			}
			last = o
			pos += mustOpSize(o)
		}
		if last == nil {
			continue
		}
		info, ok := op.GetInfo(last.Code)
		if !ok || !info.IsBranch || last.Code == op.ReturnValue {
			continue
		}

		exits := liveExits(blk)
		var target *ir.Block
		switch len(exits) {
		case 0:
			return nil, errz.Invariantf("lower: branch op %s at block %d has no exits", op.Name(last.Code), blk.Idx)
		case 1:
			target = exits[0]
		default:
			var fallthroughIdx = -1
			if i+1 < len(live) {
				fallthroughIdx = live[i+1].Idx
			}
			a, b := exits[0], exits[1]
			switch fallthroughIdx {
			case a.Idx:
				target = b
			case b.Idx:
				target = a
			default:
				return nil, errz.Invariantf("lower: neither exit of block %d falls through to the next block", blk.Idx)
			}
		}

		labelOffset := pos - mustOpSize(last) + (1 + 2 + 2*regSize)
		binary.LittleEndian.PutUint32(buf[labelOffset:labelOffset+4], uint32(target.RegOffset))
	}

	return buf, nil
}

// liveExits filters a block's exits down to those that survived
// optimization; FuseBasicBlocks and dead-block compaction never leave a
// dangling exit pointer, so this is a defensive no-op in practice.
func liveExits(blk *ir.Block) []*ir.Block {
	out := make([]*ir.Block, 0, len(blk.Exits))
	for _, e := range blk.Exits {
		if !e.Dead {
			out = append(out, e)
		}
	}
	return out
}

// mustOpSize is opSize without the error return, used in pass two where
// every op already survived pass one's identical size computation.
func mustOpSize(o *ir.Op) int {
	n, err := opSize(o)
	if err != nil {
		panic(err)
	}
	return n
}

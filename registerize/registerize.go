// Package registerize implements the abstract interpreter at the heart of
// the recompiler: it walks source stack-machine bytecode, models the
// operand stack as a stack of register names (symstack.SymStack), and
// emits an ir.Program CFG of basic blocks.
//
// Every "real" (non-folded) source opcode allocates its own ir.Block —
// the registerizer deliberately does not try to build multi-instruction
// basic blocks itself. Reconstructing real basic blocks from this
// one-op-per-block CFG is the job of the FuseBasicBlocks optimization
// pass in package passes, which runs immediately after registerization.
// This split keeps the abstract interpreter's control-flow linking logic
// (spec.md §4.D steps 4-5: re-entry check, then allocate-and-link) simple
// and uniform across every opcode, branching or not.
package registerize

import (
	"github.com/deepnoodle-ai/regcore/bytecode"
	"github.com/deepnoodle-ai/regcore/errz"
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/deepnoodle-ai/regcore/symstack"
)

// Registerize is the abstract-interpretation entry point (spec.md §4.D).
// It returns the entry block for the synthesized subgraph starting at
// offset, reusing an existing block if one already starts there (this is
// how the CFG is merged across back edges and joins).
func Registerize(prog *ir.Program, src *bytecode.SourceCode, stack symstack.SymStack, offset int) (*ir.Block, error) {
	w := &walker{prog: prog, raw: src.CodeBytes(), codeLen: src.CodeLen()}
	return w.walk(stack, offset)
}

// walker holds the state that does not change across the recursive
// descent into branch targets: the program being built and the raw
// source bytes. stack and offset, which do change at every fork, are
// threaded as ordinary parameters/locals instead of being stored here.
type walker struct {
	prog    *ir.Program
	raw     []byte
	codeLen int
}

func (w *walker) walk(stack symstack.SymStack, offset int) (*ir.Block, error) {
	// Step 1: re-entry check, before any block is allocated by this call.
	if b, ok := w.prog.BlockAt(offset); ok {
		return b, nil
	}

	var entryPoint, last *ir.Block
	i := offset

walkLoop:
	for i < w.codeLen {
		code := op.Code(w.raw[i])
		info, ok := op.GetInfo(code)
		if !ok {
			return nil, errz.Unsupportedf(i, code, "unrecognized opcode byte 0x%02x", byte(code))
		}
		if !op.Registerizable(code) {
			return nil, errz.Unsupportedf(i, code, "opcode %s is not supported by this core", info.Name)
		}
		size := info.InstrSize()
		var arg int
		if info.HasArg {
			if i+2 >= w.codeLen {
				return nil, errz.Invariantf("truncated instruction for %s at offset %d", info.Name, i)
			}
			arg = op.GetArg(w.raw, i)
		}

		// Step 3: pure stack permutations fold without emitting IR and
		// without starting a new block.
		switch code {
		case op.Nop:
			i += size
			continue walkLoop
		case op.RotTwo:
			a, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			b, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := stack.Push(a); err != nil {
				return nil, err
			}
			if err := stack.Push(b); err != nil {
				return nil, err
			}
			i += size
			continue walkLoop
		case op.RotThree:
			a, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			b, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			c, err := stack.Pop()
			if err != nil {
				return nil, err
			}
			if err := stack.Push(a); err != nil {
				return nil, err
			}
			if err := stack.Push(c); err != nil {
				return nil, err
			}
			if err := stack.Push(b); err != nil {
				return nil, err
			}
			i += size
			continue walkLoop
		}

		// Step 4: re-check for an existing block at this offset before
		// doing anything else.
		if existing, ok := w.prog.BlockAt(i); ok {
			if last != nil {
				last.Exits = append(last.Exits, existing)
			}
			if entryPoint == nil {
				entryPoint = existing
			}
			return entryPoint, nil
		}

		// Step 5: allocate a new block for this offset and link it from
		// the previous one.
		blk := w.prog.AllocBlock(i)
		if entryPoint == nil {
			entryPoint = blk
		}
		if last != nil {
			last.Exits = append(last.Exits, blk)
		}
		last = blk

		next := i + size

		terminal, err := w.dispatch(blk, code, arg, i, next, &stack)
		if err != nil {
			return nil, err
		}
		if terminal {
			return entryPoint, nil
		}
		i = next
	}

	return entryPoint, nil
}

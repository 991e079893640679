// Package ir defines the intermediate representation the registerizer
// produces and the optimizer mutates in place: Op, Block, and Program.
//
// Unlike an immutable compiled-code representation (compare
// github.com/deepnoodle-ai/regcore/bytecode.SourceCode), this IR is
// designed to be mutated by the optimization pipeline in package passes:
// ops are marked dead and later compacted away, blocks are fused, and
// register operands are rewritten by copy propagation. There is
// intentionally no immutability guarantee here — Program is a workspace,
// not a finished artifact. The finished artifact is the byte buffer
// package lower produces from it.
package ir

import (
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/deepnoodle-ai/regcore/symstack"
)

// Register names a virtual storage cell. NoRegister (-1) means "absent",
// used as a placeholder in emitted slots.
type Register = symstack.Register

// NoRegister is the placeholder value for an absent register.
const NoRegister = symstack.NoRegister

// Op is a single IR instruction.
type Op struct {
	Code op.Code
	Arg  int

	// Regs is the ordered sequence of operand registers. When HasDest is
	// true, the last entry is the write target and all prior entries are
	// inputs; otherwise every entry is an input.
	Regs []Register

	// HasDest records whether the last entry of Regs is a destination.
	HasDest bool

	// Dead marks this op for removal by the next compaction pass.
	Dead bool
}

// NumInputs returns the number of input (non-destination) registers.
func (o *Op) NumInputs() int {
	if o.HasDest {
		return len(o.Regs) - 1
	}
	return len(o.Regs)
}

// Dest returns the destination register. Panics if HasDest is false;
// callers must check HasDest first, mirroring the fatal assertion the
// original CompilerOp::dest() makes on a missing destination.
func (o *Op) Dest() Register {
	if !o.HasDest || len(o.Regs) == 0 {
		panic("ir: Dest() called on an op with no destination")
	}
	return o.Regs[len(o.Regs)-1]
}

// Inputs returns the input registers (all of Regs, minus the trailing
// destination when HasDest is set).
func (o *Op) Inputs() []Register {
	return o.Regs[:o.NumInputs()]
}

// Block is a basic block: a maximal straight-line run of Ops with a
// single entry and, at most, two successors (a conditional branch's
// fall-through and taken targets).
type Block struct {
	// PyOffset is the source-bytecode byte index this block begins at.
	// It is the identity key used to merge the CFG: at most one Block
	// exists per PyOffset (invariant P1).
	PyOffset int

	// Idx is the stable insertion index assigned at allocation.
	Idx int

	Code []*Op

	// Exits holds this block's successors. For conditional branches,
	// Exits[0] is the fall-through and Exits[1] is the taken target; for
	// FOR_ITER, Exits[0] is the has-item continuation and Exits[1] is the
	// iterator-exhausted target.
	Exits []*Block

	// Entries holds this block's predecessors, populated by the
	// MarkEntries pass.
	Entries []*Block

	// RegOffset is the byte offset of this block's first emitted
	// instruction in the final lowered stream, populated by lowering.
	RegOffset int

	// Visited is pass bookkeeping, reset at the start of each traversal.
	// Dead marks a block fused into its predecessor and is never cleared.
	Visited bool
	Dead    bool
}

// AddOp appends a non-destination op to the block.
func (b *Block) AddOp(code op.Code, arg int, regs ...Register) *Op {
	o := &Op{Code: code, Arg: arg, Regs: append([]Register(nil), regs...), HasDest: false}
	b.Code = append(b.Code, o)
	return o
}

// AddDestOp appends an op whose last register is a destination.
func (b *Block) AddDestOp(code op.Code, arg int, regs ...Register) *Op {
	o := &Op{Code: code, Arg: arg, Regs: append([]Register(nil), regs...), HasDest: true}
	b.Code = append(b.Code, o)
	return o
}

// AddVarargsOp appends a varargs op with the given register list. The
// last register is treated as the destination when hasDest is true,
// matching the call/build-sequence opcodes that always write a result,
// versus varargs opcodes with no destination (the slice store/delete
// forms and RAISE_VARARGS).
func (b *Block) AddVarargsOp(code op.Code, arg int, regs []Register, hasDest bool) *Op {
	o := &Op{Code: code, Arg: arg, Regs: append([]Register(nil), regs...), HasDest: hasDest}
	b.Code = append(b.Code, o)
	return o
}

// Program owns all IR storage for a single compilation: every allocated
// Block and, transitively, every Op. Cross-block references (Exits,
// Entries) are non-owning lookups into Blocks.
type Program struct {
	Blocks []*Block

	// NumReg is the high-water mark of allocated registers.
	NumReg int

	NumConsts int
	NumLocals int

	// blocksByOffset indexes Blocks by PyOffset for the registerizer's
	// re-entry check (spec.md §4.D step 1).
	blocksByOffset map[int]*Block
}

// NewProgram creates an empty Program for a source code object with the
// given constant-pool and local-variable counts. Registers
// [0, numConsts) alias constants; [numConsts, numConsts+numLocals) alias
// locals; fresh temporaries are allocated starting at numConsts+numLocals.
func NewProgram(numConsts, numLocals int) *Program {
	p := &Program{
		NumConsts:      numConsts,
		NumLocals:      numLocals,
		NumReg:         numConsts + numLocals,
		blocksByOffset: make(map[int]*Block),
	}
	return p
}

// BlockAt returns the existing block starting at the given source
// offset, if any. This implements the CFG-merge behavior described in
// spec.md §4.D step 1: jumping into an already-compiled region reuses
// the extant block rather than duplicating it.
func (p *Program) BlockAt(offset int) (*Block, bool) {
	b, ok := p.blocksByOffset[offset]
	return b, ok
}

// AllocBlock allocates and registers a new Block at the given source
// offset. Callers must have already checked BlockAt returns not-ok for
// this offset (invariant P1: at most one Block per PyOffset).
func (p *Program) AllocBlock(offset int) *Block {
	b := &Block{PyOffset: offset, Idx: len(p.Blocks)}
	p.Blocks = append(p.Blocks, b)
	p.blocksByOffset[offset] = b
	return b
}

// NextReg allocates and returns a fresh temporary register.
func (p *Program) NextReg() Register {
	r := p.NumReg
	p.NumReg++
	return r
}

// ConstReg returns the register aliasing constant-pool slot i.
func (p *Program) ConstReg(i int) Register {
	return i
}

// LocalReg returns the register aliasing local-variable slot i.
func (p *Program) LocalReg(i int) Register {
	return p.NumConsts + i
}

// Compact removes dead blocks from p.Blocks in place, preserving the
// relative order of the survivors. It does not renumber Idx — pass
// implementations that rely on insertion order (fusion, lowering) use Idx
// as allocation order, which compaction must not disturb, only shorten.
func (p *Program) Compact() {
	out := p.Blocks[:0]
	for _, b := range p.Blocks {
		if !b.Dead {
			out = append(out, b)
		}
	}
	p.Blocks = out
}

// CompactOps removes dead ops from b.Code in place.
func (b *Block) CompactOps() {
	out := b.Code[:0]
	for _, o := range b.Code {
		if !o.Dead {
			out = append(out, o)
		}
	}
	b.Code = out
}

// Stats summarizes a Program's shape after registerization or after any
// point in the optimization pipeline, for the CLI's --json flag.
type Stats struct {
	NumBlocks    int `json:"num_blocks"`
	NumOps       int `json:"num_ops"`
	NumDeadOps   int `json:"num_dead_ops"`
	NumRegisters int `json:"num_registers"`
	NumConsts    int `json:"num_consts"`
	NumLocals    int `json:"num_locals"`
}

// Stats reports the current op/block counts. It counts ops still marked
// Dead separately rather than assuming CompactOps has already run, since
// callers may want a snapshot mid-pipeline (e.g. right after
// DeadCodeElim marks ops but before a final Compact).
func (p *Program) Stats() Stats {
	s := Stats{
		NumBlocks:    len(p.Blocks),
		NumRegisters: p.NumReg,
		NumConsts:    p.NumConsts,
		NumLocals:    p.NumLocals,
	}
	for _, b := range p.Blocks {
		for _, o := range b.Code {
			s.NumOps++
			if o.Dead {
				s.NumDeadOps++
			}
		}
	}
	return s
}

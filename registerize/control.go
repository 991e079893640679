package registerize

import (
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/deepnoodle-ai/regcore/symstack"
)

// unpackSequence pops one sequence value and pushes arg elements in
// reverse source order, synthesizing a CONST_INDEX op per element (the
// register-machine has no single "unpack" primitive; it is expressed as
// n independent indexing ops against the same source register).
func (w *walker) unpackSequence(blk *ir.Block, arg int, stack *symstack.SymStack) error {
	src, err := stack.Pop()
	if err != nil {
		return err
	}
	dests := make([]ir.Register, arg)
	for k := arg - 1; k >= 0; k-- {
		d := w.prog.NextReg()
		blk.AddDestOp(op.ConstIndex, k, src, d)
		dests[k] = d
	}
	for k := arg - 1; k >= 0; k-- {
		if err := stack.Push(dests[k]); err != nil {
			return err
		}
	}
	return nil
}

// sliceArgCount returns how many bound registers a SLICE+n / STORE_SLICE+n
// / DELETE_SLICE+n variant consumes off the stack, per the low two bits of
// its opcode (0..3: none, lower, upper, both).
func sliceArgCount(code op.Code, base op.Code) int {
	switch code - base {
	case 0:
		return 0
	case 1, 2:
		return 1
	default:
		return 2
	}
}

func (w *walker) sliceGet(blk *ir.Block, code op.Code, stack *symstack.SymStack) error {
	n := sliceArgCount(code, op.Slice0)
	bounds := make([]ir.Register, n)
	for k := n - 1; k >= 0; k-- {
		r, err := stack.Pop()
		if err != nil {
			return err
		}
		bounds[k] = r
	}
	obj, err := stack.Pop()
	if err != nil {
		return err
	}
	d := w.prog.NextReg()
	regs := append([]ir.Register{obj}, bounds...)
	regs = append(regs, d)
	blk.AddVarargsOp(code, int(code-op.Slice0), regs, true)
	return stack.Push(d)
}

func (w *walker) sliceStore(blk *ir.Block, code op.Code, stack *symstack.SymStack) error {
	n := sliceArgCount(code, op.StoreSlice0)
	bounds := make([]ir.Register, n)
	for k := n - 1; k >= 0; k-- {
		r, err := stack.Pop()
		if err != nil {
			return err
		}
		bounds[k] = r
	}
	obj, err := stack.Pop()
	if err != nil {
		return err
	}
	val, err := stack.Pop()
	if err != nil {
		return err
	}
	regs := append([]ir.Register{val, obj}, bounds...)
	blk.AddVarargsOp(code, int(code-op.StoreSlice0), regs, false)
	return nil
}

func (w *walker) sliceDelete(blk *ir.Block, code op.Code, stack *symstack.SymStack) error {
	n := sliceArgCount(code, op.DeleteSlice0)
	bounds := make([]ir.Register, n)
	for k := n - 1; k >= 0; k-- {
		r, err := stack.Pop()
		if err != nil {
			return err
		}
		bounds[k] = r
	}
	obj, err := stack.Pop()
	if err != nil {
		return err
	}
	regs := append([]ir.Register{obj}, bounds...)
	blk.AddVarargsOp(code, int(code-op.DeleteSlice0), regs, false)
	return nil
}

// call decodes the CALL_FUNCTION oparg (low byte: positional count na,
// high byte: keyword-pair count nk) and pops callable, na positional
// args, and 2*nk keyword key/value pairs, all in reverse source order,
// then emits a single varargs call op producing one result. This applies
// uniformly to CALL_FUNCTION and its _VAR/_KW/_VAR_KW variants — n =
// na + 2*nk in every case, per spec.md §4.D and rcompile.cc's
// CALL_FUNCTION* case, which pop no additional operand for the variants.
func (w *walker) call(blk *ir.Block, code op.Code, arg int, stack *symstack.SymStack) error {
	na := arg & 0xff
	nk := (arg >> 8) & 0xff

	total := na + 2*nk
	popped := make([]ir.Register, total)
	for k := total - 1; k >= 0; k-- {
		r, err := stack.Pop()
		if err != nil {
			return err
		}
		popped[k] = r
	}
	callee, err := stack.Pop()
	if err != nil {
		return err
	}
	d := w.prog.NextReg()
	regs := append(popped, callee, d)
	blk.AddVarargsOp(code, arg, regs, true)
	return stack.Push(d)
}

func (w *walker) raiseVarargs(blk *ir.Block, arg int, stack *symstack.SymStack) error {
	popped := make([]ir.Register, arg)
	for k := arg - 1; k >= 0; k-- {
		r, err := stack.Pop()
		if err != nil {
			return err
		}
		popped[k] = r
	}
	blk.AddVarargsOp(op.RaiseVarargs, arg, popped, false)
	return nil
}

// breakLoop pops the innermost loop frame and recurses into its target,
// terminating this linear walk (spec.md §9: BREAK_LOOP always ends the
// walk by recursing rather than looping, since control genuinely leaves
// the loop body).
func (w *walker) breakLoop(blk *ir.Block, stack *symstack.SymStack) (bool, error) {
	frame, err := stack.PopFrame()
	if err != nil {
		return false, err
	}
	target, err := w.walk(*stack, frame.Target)
	if err != nil {
		return false, err
	}
	blk.Exits = append(blk.Exits, target)
	blk.AddOp(op.BreakLoop, 0)
	return true, nil
}

// continueLoop resolves the open question in spec.md §9 conservatively:
// it behaves like BREAK_LOOP's control-transfer shape, ending the linear
// walk by recursing into the loop-continuation target named by arg,
// rather than attempting to restore the loop frame and keep walking
// linearly past it.
func (w *walker) continueLoop(blk *ir.Block, arg int, stack *symstack.SymStack) (bool, error) {
	if _, err := stack.PopFrame(); err != nil {
		return false, err
	}
	target, err := w.walk(*stack, arg)
	if err != nil {
		return false, err
	}
	blk.Exits = append(blk.Exits, target)
	blk.AddOp(op.ContinueLoop, arg)
	return true, nil
}

func (w *walker) jumpForward(blk *ir.Block, next, arg int, stack *symstack.SymStack) (bool, error) {
	dst := next + arg
	target, err := w.walk(*stack, dst)
	if err != nil {
		return false, err
	}
	blk.Exits = append(blk.Exits, target)
	blk.AddOp(op.JumpAbsolute, dst)
	return true, nil
}

func (w *walker) jumpAbsolute(blk *ir.Block, arg int, stack *symstack.SymStack) (bool, error) {
	target, err := w.walk(*stack, arg)
	if err != nil {
		return false, err
	}
	blk.Exits = append(blk.Exits, target)
	blk.AddOp(op.JumpAbsolute, arg)
	return true, nil
}

// popJumpIf handles POP_JUMP_IF_FALSE/TRUE: the tested value is always
// popped, then both successors are recursed into with identical stacks
// (the value is gone either way). Exits[0] is fall-through, Exits[1] is
// the taken branch, matching ir.Block's documented convention.
func (w *walker) popJumpIf(blk *ir.Block, code op.Code, next, arg int, stack *symstack.SymStack) (bool, error) {
	cond, err := stack.Pop()
	if err != nil {
		return false, err
	}
	blk.AddOp(code, arg, cond)

	fallThrough, err := w.walk(*stack, next)
	if err != nil {
		return false, err
	}
	taken, err := w.walk(*stack, arg)
	if err != nil {
		return false, err
	}
	blk.Exits = append(blk.Exits, fallThrough, taken)
	return true, nil
}

// jumpOrPop handles JUMP_IF_FALSE_OR_POP / JUMP_IF_TRUE_OR_POP: on the
// not-taken path the tested value is popped before falling through; on
// the taken path it is left on the stack, so the two recursive walks
// fork from different stack states (spec.md §4.D).
func (w *walker) jumpOrPop(blk *ir.Block, code op.Code, next, arg int, stack *symstack.SymStack) (bool, error) {
	cond, err := stack.Peek(0)
	if err != nil {
		return false, err
	}
	blk.AddOp(code, arg, cond)

	fallStack := *stack
	if _, err := fallStack.Pop(); err != nil {
		return false, err
	}
	fallThrough, err := w.walk(fallStack, next)
	if err != nil {
		return false, err
	}

	takenStack := *stack
	taken, err := w.walk(takenStack, arg)
	if err != nil {
		return false, err
	}
	blk.Exits = append(blk.Exits, fallThrough, taken)
	return true, nil
}

// forIter models the iterator protocol's two exits: Exits[0] continues
// the loop body with the yielded value pushed, Exits[1] is taken when
// the iterator is exhausted, with the iterator register popped in that
// branch only (spec.md §4.D, §7 the iterator-protocol edge case).
func (w *walker) forIter(blk *ir.Block, next, arg int, stack *symstack.SymStack) (bool, error) {
	iter, err := stack.Peek(0)
	if err != nil {
		return false, err
	}

	itemStack := *stack
	item := w.prog.NextReg()
	if err := itemStack.Push(item); err != nil {
		return false, err
	}
	hasItem, err := w.walk(itemStack, next)
	if err != nil {
		return false, err
	}

	exhaustedStack := *stack
	if _, err := exhaustedStack.Pop(); err != nil {
		return false, err
	}
	exhausted, err := w.walk(exhaustedStack, next+arg)
	if err != nil {
		return false, err
	}

	blk.AddDestOp(op.ForIter, arg, iter, item)
	blk.Exits = append(blk.Exits, hasItem, exhausted)
	return true, nil
}

package registerize

import (
	"github.com/deepnoodle-ai/regcore/errz"
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/deepnoodle-ai/regcore/symstack"
)

// dispatch emits IR for a single non-folded opcode into blk, mutating
// stack as the opcode's stack effect dictates. It returns terminal=true
// when the opcode ends this linear walk (a branch, a return, or a jump
// that continues via recursion into a target) — in that case the caller
// must return immediately rather than advance i and keep looping.
func (w *walker) dispatch(blk *ir.Block, code op.Code, arg, i, next int, stack *symstack.SymStack) (terminal bool, err error) {
	switch code {

	// --- Loads that produce one value ---
	case op.LoadConst:
		return false, w.emitLoad(blk, op.LoadFast, 0, w.prog.ConstReg(arg), stack)
	case op.LoadFast:
		return false, w.emitLoad(blk, op.LoadFast, 0, w.prog.LocalReg(arg), stack)
	case op.LoadAttr:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		return false, w.emitLoad(blk, op.LoadAttr, arg, r, stack)
	case op.LoadGlobal, op.LoadName, op.LoadDeref, op.LoadClosure, op.LoadLocals:
		d := w.prog.NextReg()
		blk.AddDestOp(code, arg, d)
		return false, stack.Push(d)

	// --- Stores ---
	case op.StoreFast:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddDestOp(op.StoreFast, 0, r, w.prog.LocalReg(arg))
		return false, nil
	case op.StoreGlobal, op.StoreName, op.StoreDeref:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(code, arg, r)
		return false, nil
	case op.StoreAttr:
		obj, err := stack.Pop()
		if err != nil {
			return false, err
		}
		val, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.StoreAttr, arg, obj, val)
		return false, nil
	case op.StoreSubscr:
		idx, err := stack.Pop()
		if err != nil {
			return false, err
		}
		obj, err := stack.Pop()
		if err != nil {
			return false, err
		}
		val, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.StoreSubscr, 0, idx, obj, val)
		return false, nil
	case op.StoreMap:
		key, err := stack.Pop()
		if err != nil {
			return false, err
		}
		val, err := stack.Pop()
		if err != nil {
			return false, err
		}
		mp, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.StoreMap, 0, key, val, mp)
		return false, stack.Push(mp)

	// --- Stack ---
	case op.PopTop:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.PopTop, 0, r)
		return false, nil
	case op.DupTop:
		r, err := stack.Peek(0)
		if err != nil {
			return false, err
		}
		d := w.prog.NextReg()
		blk.AddDestOp(op.DupTop, 0, r, d)
		return false, stack.Push(d)

	// --- Unary ---
	case op.UnaryNot, op.UnaryNegative, op.UnaryPositive, op.UnaryInvert:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		d := w.prog.NextReg()
		blk.AddDestOp(code, 0, r, d)
		return false, stack.Push(d)

	// --- Binary / compare ---
	case op.BinaryAdd, op.BinarySubtract, op.BinaryMultiply, op.BinaryDivide,
		op.BinaryModulo, op.BinaryPower, op.BinaryAnd, op.BinaryOr, op.BinaryXor,
		op.BinarySubscr:
		rhs, err := stack.Pop()
		if err != nil {
			return false, err
		}
		lhs, err := stack.Pop()
		if err != nil {
			return false, err
		}
		d := w.prog.NextReg()
		blk.AddDestOp(code, 0, rhs, lhs, d)
		return false, stack.Push(d)
	case op.CompareOp:
		rhs, err := stack.Pop()
		if err != nil {
			return false, err
		}
		lhs, err := stack.Pop()
		if err != nil {
			return false, err
		}
		d := w.prog.NextReg()
		blk.AddDestOp(op.CompareOp, arg, rhs, lhs, d)
		return false, stack.Push(d)

	// --- Build sequences ---
	case op.BuildTuple, op.BuildList, op.BuildSet:
		elems := make([]ir.Register, arg)
		for k := arg - 1; k >= 0; k-- {
			r, err := stack.Pop()
			if err != nil {
				return false, err
			}
			elems[k] = r
		}
		d := w.prog.NextReg()
		regs := append(elems, d)
		blk.AddVarargsOp(code, arg, regs, true)
		return false, stack.Push(d)
	case op.BuildMap:
		d := w.prog.NextReg()
		blk.AddDestOp(op.BuildMap, arg, d)
		return false, stack.Push(d)

	case op.ListAppend:
		val, err := stack.Pop()
		if err != nil {
			return false, err
		}
		target, err := stack.Peek(arg)
		if err != nil {
			return false, err
		}
		blk.AddOp(op.ListAppend, arg, val, target)
		return false, nil

	case op.ConstIndex:
		// Only ever synthesized by UNPACK_SEQUENCE below; not expected
		// as a source opcode, but handled uniformly for completeness of
		// the dispatch table.
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		d := w.prog.NextReg()
		blk.AddDestOp(op.ConstIndex, arg, r, d)
		return false, stack.Push(d)

	case op.UnpackSequence:
		return false, w.unpackSequence(blk, arg, stack)

	case op.GetIter:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		d := w.prog.NextReg()
		blk.AddDestOp(op.GetIter, 0, r, d)
		return false, stack.Push(d)

	case op.Slice0, op.Slice1, op.Slice2, op.Slice3:
		return false, w.sliceGet(blk, code, stack)
	case op.StoreSlice0, op.StoreSlice1, op.StoreSlice2, op.StoreSlice3:
		return false, w.sliceStore(blk, code, stack)
	case op.DeleteSlice0, op.DeleteSlice1, op.DeleteSlice2, op.DeleteSlice3:
		return false, w.sliceDelete(blk, code, stack)

	case op.CallFunction, op.CallFunctionVar, op.CallFunctionKw, op.CallFunctionVarKw:
		return false, w.call(blk, code, arg, stack)

	case op.RaiseVarargs:
		return false, w.raiseVarargs(blk, arg, stack)

	case op.PrintItem:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.PrintItem, 0, r)
		return false, nil
	case op.PrintNewline:
		blk.AddOp(op.PrintNewline, 0)
		return false, nil
	case op.PrintItemTo:
		to, err := stack.Pop()
		if err != nil {
			return false, err
		}
		val, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.PrintItemTo, 0, to, val)
		return false, nil
	case op.PrintNewlineTo:
		to, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.PrintNewlineTo, 0, to)
		return false, nil

	case op.SetupLoop:
		blk.AddOp(op.SetupLoop, arg)
		if err := stack.PushFrame(next + arg); err != nil {
			return false, err
		}
		return false, nil
	case op.PopBlock:
		if _, err := stack.PopFrame(); err != nil {
			return false, err
		}
		return false, nil

	case op.BreakLoop:
		return w.breakLoop(blk, stack)
	case op.ContinueLoop:
		return w.continueLoop(blk, arg, stack)

	case op.JumpForward:
		return w.jumpForward(blk, next, arg, stack)
	case op.JumpAbsolute:
		return w.jumpAbsolute(blk, arg, stack)
	case op.PopJumpIfFalse, op.PopJumpIfTrue:
		return w.popJumpIf(blk, code, next, arg, stack)
	case op.JumpIfFalseOrPop, op.JumpIfTrueOrPop:
		return w.jumpOrPop(blk, code, next, arg, stack)

	case op.ForIter:
		return w.forIter(blk, next, arg, stack)

	case op.ReturnValue:
		r, err := stack.Pop()
		if err != nil {
			return false, err
		}
		blk.AddOp(op.ReturnValue, 0, r)
		return true, nil

	default:
		return false, errz.Unsupportedf(i, code, "opcode has no registerization rule")
	}
}

// emitLoad is the shared shape for opcodes that load one value from a
// fixed source register (constants and locals both funnel through
// LOAD_FAST per spec.md §4.D).
func (w *walker) emitLoad(blk *ir.Block, code op.Code, arg int, src ir.Register, stack *symstack.SymStack) error {
	d := w.prog.NextReg()
	blk.AddDestOp(code, arg, src, d)
	return stack.Push(d)
}

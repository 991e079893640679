// Package passes implements the optimization pipeline that runs over an
// ir.Program immediately after registerization: MarkEntries,
// FuseBasicBlocks, CopyPropagation, StoreElim, and DeadCodeElim, run in
// that fixed order by Optimize.
//
// Traversal is expressed as two small skeletons, Run (forward) and
// RunBackward (backward), each taking a Pass. This mirrors spec.md §9's
// design note to avoid a class hierarchy in favor of a small
// visitor-style interface — Go has no virtual dispatch to build one on,
// so the "visit_op"/"visit_fn" split becomes a driver function plus a
// one-method interface.
package passes

import "github.com/deepnoodle-ai/regcore/ir"

// Pass visits one live block per call from a traversal driver. A Pass
// that only needs uniform per-op behavior can build itself from
// VisitOpsForward/VisitOpsBackward inside VisitBlock; passes needing
// whole-block context (FuseBasicBlocks, MarkEntries) implement VisitBlock
// directly.
type Pass interface {
	VisitBlock(blk *ir.Block)
}

// Run drives a single forward pass over prog: every block is visited
// exactly once, in allocation order, skipping blocks already marked dead.
// After traversal, dead ops and dead blocks are compacted out of prog.
func Run(prog *ir.Program, p Pass) {
	resetVisited(prog)
	for _, blk := range prog.Blocks {
		if blk.Visited || blk.Dead {
			continue
		}
		p.VisitBlock(blk)
		blk.Visited = true
	}
	compact(prog)
}

// RunBackward drives a single backward pass over prog: blocks are visited
// in reverse allocation order. Unlike the historical implementation this
// is grounded on, which iterated `for (i = n; i-- > 0;)` and thereby
// skipped both the last block and, within BackwardPass.visit_bb, the last
// op of each block, this traversal covers every live block and every
// live op (spec.md §9's corrected `[0, n)` bound).
func RunBackward(prog *ir.Program, p Pass) {
	resetVisited(prog)
	for i := len(prog.Blocks) - 1; i >= 0; i-- {
		blk := prog.Blocks[i]
		if blk.Visited || blk.Dead {
			continue
		}
		p.VisitBlock(blk)
		blk.Visited = true
	}
	compact(prog)
}

// VisitOpsForward calls visit on every non-dead op in blk, in forward
// (program) order.
func VisitOpsForward(blk *ir.Block, visit func(*ir.Op)) {
	for _, o := range blk.Code {
		if !o.Dead {
			visit(o)
		}
	}
}

// VisitOpsBackward calls visit on every non-dead op in blk, in reverse
// (program) order, covering the full range [0, len(blk.Code)).
func VisitOpsBackward(blk *ir.Block, visit func(*ir.Op)) {
	for i := len(blk.Code) - 1; i >= 0; i-- {
		o := blk.Code[i]
		if !o.Dead {
			visit(o)
		}
	}
}

func resetVisited(prog *ir.Program) {
	for _, blk := range prog.Blocks {
		blk.Visited = false
	}
}

func compact(prog *ir.Program) {
	for _, blk := range prog.Blocks {
		if !blk.Dead {
			blk.CompactOps()
		}
	}
	prog.Compact()
}

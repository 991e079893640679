package passes

import "github.com/deepnoodle-ai/regcore/ir"

// deadCodeElim removes pure ops whose destination has no remaining live
// consumer, working backward through each block so eliminating one op
// can immediately expose its own inputs as newly dead in an earlier op
// (invariant P5).
type deadCodeElim struct {
	counts *UseCounts
}

func (d deadCodeElim) VisitBlock(blk *ir.Block) {
	VisitOpsBackward(blk, func(o *ir.Op) {
		if !o.HasDest {
			return
		}
		dest := o.Dest()
		if IsPure(o.Code) && d.counts.Get(dest) == 0 {
			o.Dead = true
			for _, r := range o.Inputs() {
				d.counts.decr(r)
			}
		}
	})
}

// DeadCodeElim removes live-but-unused pure ops in a single backward
// pass over the program, using a use-count snapshot computed once for
// this invocation.
func DeadCodeElim(prog *ir.Program) {
	RunBackward(prog, deadCodeElim{counts: NewUseCounts(prog)})
}

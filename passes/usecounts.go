package passes

import (
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
)

// UseCounts tracks how many times each register is read as an op input
// across a whole program. StoreElim and DeadCodeElim each build a fresh
// UseCounts at the start of their pass invocation (spec.md §9: "compute
// once per pass invocation; do not try to keep it live across passes —
// optimizations invalidate it").
type UseCounts struct {
	counts map[ir.Register]int
}

// NewUseCounts computes use counts for every live op's input registers
// across prog.
func NewUseCounts(prog *ir.Program) *UseCounts {
	uc := &UseCounts{counts: make(map[ir.Register]int)}
	for _, blk := range prog.Blocks {
		if blk.Dead {
			continue
		}
		for _, o := range blk.Code {
			if o.Dead {
				continue
			}
			for _, r := range o.Inputs() {
				uc.incr(r)
			}
		}
	}
	return uc
}

func (uc *UseCounts) Get(r ir.Register) int {
	return uc.counts[r]
}

func (uc *UseCounts) incr(r ir.Register) {
	uc.counts[r]++
}

func (uc *UseCounts) decr(r ir.Register) {
	uc.counts[r]--
}

// IsPure reports whether an op of this code can be removed as dead when
// its destination has no remaining uses. Matches op.Info.IsPure's table
// (spec.md §4.A).
func IsPure(code op.Code) bool {
	info, ok := op.GetInfo(code)
	return ok && info.IsPure
}

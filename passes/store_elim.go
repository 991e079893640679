package passes

import (
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
)

// storeElim rewrites a defining op's destination directly to the target
// of a following move (LOAD_FAST/STORE_FAST) when the moved-from
// register has exactly one use — the move itself — eliminating the move
// and the intermediate register.
type storeElim struct {
	counts *UseCounts
}

func (s storeElim) VisitBlock(blk *ir.Block) {
	env := make(map[ir.Register]*ir.Op)
	for _, o := range blk.Code {
		if o.Dead {
			continue
		}
		var target ir.Register
		if o.HasDest {
			target = o.Dest()
			env[target] = o
		}
		if o.Code == op.LoadFast || o.Code == op.StoreFast {
			source := o.Regs[0]
			if def, ok := env[source]; ok && s.counts.Get(source) == 1 {
				def.Regs[def.NumInputs()] = target
				o.Dead = true
			}
		}
	}
}

// StoreElim eliminates single-use register moves by redirecting the
// defining op to write the move's target directly. Use counts are
// computed once for this invocation (spec.md §9) and not shared with any
// other pass.
func StoreElim(prog *ir.Program) {
	Run(prog, storeElim{counts: NewUseCounts(prog)})
}

package passes

import (
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/op"
)

// copyPropagation forwards register moves within a block: LOAD_FAST and
// STORE_FAST both have the shape [source, target], so once one has run,
// later reads of target can be rewritten to read source directly.
type copyPropagation struct{}

func (copyPropagation) VisitBlock(blk *ir.Block) {
	env := make(map[ir.Register]ir.Register)
	for _, o := range blk.Code {
		if o.Dead {
			continue
		}
		inputs := o.Inputs()
		for i, r := range inputs {
			if fwd, ok := env[r]; ok {
				inputs[i] = fwd
			}
		}
		if o.Code == op.LoadFast || o.Code == op.StoreFast {
			source := o.Regs[0]
			target := o.Dest()
			if fwd, ok := env[source]; ok {
				source = fwd
			}
			env[target] = source
		}
	}
}

// CopyPropagation forwards LOAD_FAST/STORE_FAST moves within each block,
// so a later consumer of a moved-to register can read the original
// source directly instead of through the copy.
func CopyPropagation(prog *ir.Program) {
	Run(prog, copyPropagation{})
}

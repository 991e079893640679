package passes

import "github.com/deepnoodle-ai/regcore/ir"

// fuseBasicBlocks reconstructs real basic blocks from the registerizer's
// one-op-per-block CFG: a block with a single successor whose only
// predecessor is this block absorbs that successor's code and repeats
// until it hits a join, a branch, or an already-fused block.
type fuseBasicBlocks struct{}

func (fuseBasicBlocks) VisitBlock(blk *ir.Block) {
	if len(blk.Exits) != 1 {
		return
	}
	next := blk.Exits[0]
	for {
		if len(next.Entries) > 1 || next.Visited {
			break
		}
		blk.Code = append(blk.Code, next.Code...)
		next.Dead = true
		next.Visited = true
		blk.Exits = next.Exits
		if len(blk.Exits) != 1 {
			break
		}
		next = blk.Exits[0]
	}
}

// FuseBasicBlocks merges straight-line chains of single-op blocks
// (invariant P6: a fused block's absorbed successor had exactly one
// predecessor) produced by Registerize back into real basic blocks. It
// must run after MarkEntries, which populates the Entries lists this
// pass tests.
func FuseBasicBlocks(prog *ir.Program) {
	Run(prog, fuseBasicBlocks{})
}

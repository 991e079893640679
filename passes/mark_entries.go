package passes

import "github.com/deepnoodle-ai/regcore/ir"

// markEntries links each block's Entries (predecessors) from its
// exits, so that FuseBasicBlocks can test the single-predecessor
// condition (invariant P6).
type markEntries struct{}

func (markEntries) VisitBlock(blk *ir.Block) {
	for _, next := range blk.Exits {
		next.Entries = append(next.Entries, blk)
	}
}

// MarkEntries populates every block's Entries list from the program's
// Exits edges. Entries are cleared first so that running the pipeline
// twice (spec.md §8 R1, idempotence) does not accumulate duplicate
// predecessors.
func MarkEntries(prog *ir.Program) {
	for _, blk := range prog.Blocks {
		blk.Entries = nil
	}
	Run(prog, markEntries{})
}

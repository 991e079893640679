package passes

import "github.com/deepnoodle-ai/regcore/ir"

// Optimize runs the fixed pass pipeline over prog in place: MarkEntries,
// FuseBasicBlocks, CopyPropagation, StoreElim, DeadCodeElim. Running it
// twice in succession must yield byte-identical output (spec.md §8 R1).
func Optimize(prog *ir.Program) {
	MarkEntries(prog)
	FuseBasicBlocks(prog)
	CopyPropagation(prog)
	StoreElim(prog)
	DeadCodeElim(prog)
}

package ir

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/regcore/op"
)

// Dump renders the program's blocks in the textual format spec.md §4.C
// describes: one "bb_<idx>:" section per block, one op per line, and a
// trailing "-> bb_i,bb_j" successor list. It is the machine-diffable form
// used to check idempotence (spec.md §8 R1) — running the optimization
// pipeline twice should render identically.
func Dump(p *Program) string {
	var b strings.Builder
	for _, blk := range p.Blocks {
		if blk.Dead {
			continue
		}
		fmt.Fprintf(&b, "bb_%d:\n", blk.Idx)
		for _, o := range blk.Code {
			if o.Dead {
				continue
			}
			fmt.Fprintf(&b, "  %s\n", dumpOp(o))
		}
		if len(blk.Exits) > 0 {
			names := make([]string, 0, len(blk.Exits))
			for _, e := range blk.Exits {
				names = append(names, fmt.Sprintf("bb_%d", e.Idx))
			}
			fmt.Fprintf(&b, "-> %s\n", strings.Join(names, ","))
		}
	}
	return b.String()
}

func dumpOp(o *Op) string {
	var b strings.Builder
	b.WriteString(op.Name(o.Code))
	if o.Arg != 0 {
		fmt.Fprintf(&b, " %d", o.Arg)
	}
	if len(o.Regs) > 0 {
		regs := make([]string, len(o.Regs))
		for i, r := range o.Regs {
			regs[i] = fmt.Sprintf("r%d", r)
		}
		if o.HasDest {
			dst := regs[len(regs)-1]
			inputs := regs[:len(regs)-1]
			if len(inputs) > 0 {
				fmt.Fprintf(&b, " %s = (%s)", dst, strings.Join(inputs, ", "))
			} else {
				fmt.Fprintf(&b, " %s = ()", dst)
			}
		} else {
			fmt.Fprintf(&b, " (%s)", strings.Join(regs, ", "))
		}
	}
	return b.String()
}

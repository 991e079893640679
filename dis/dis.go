// Package dis disassembles both intermediate forms this core produces:
// the mutable IR (package ir, mid-pipeline) and the final lowered
// register-machine byte stream (package lower). PrintIR is the
// machine-readable, uncolored form used to diff a Program against
// itself (property R1, idempotence); PrintLowered renders the box-drawn
// instruction table the teacher's dis.Print renders, colorized when
// stdout is a terminal.
package dis

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/lower"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
)

// PrintIR writes the textual dump of a Program's current block graph
// (ir.Dump's "bb_<idx>:" format). There is no color here by design —
// this output is meant to be diffed byte-for-byte across repeated
// optimization runs (property R1, idempotence).
func PrintIR(p *ir.Program, w io.Writer) {
	io.WriteString(w, ir.Dump(p))
}

// PrintLowered walks the serialized register-machine stream produced by
// lower.Lower and prints a box-drawn OFFSET / OPCODE / OPERANDS / REGS /
// LABEL table, exercising the same decoder used by lower's own tests
// (property P4, size round-trip) as a manual diagnostic. Cells are
// colorized with fatih/color when stdout is a terminal.
func PrintLowered(buf []byte, w io.Writer) error {
	prelude, err := lower.DecodePrelude(buf)
	if err != nil {
		return err
	}
	ops, err := lower.DecodeOps(buf)
	if err != nil {
		return err
	}

	colorEnabled := isatty.IsTerminal(os.Stdout.Fd())
	fmt.Fprintf(w, "; mapped_registers=%d mapped_labels=%d num_registers=%d\n",
		prelude.MappedRegisters, prelude.MappedLabels, prelude.NumRegisters)

	t := newTable(w).
		withHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "REGS", "LABEL"}).
		withHeaderAlignment([]alignment{alignCenter, alignCenter, alignCenter, alignCenter, alignCenter}).
		withColumnAlignment([]alignment{alignRight, alignLeft, alignRight, alignLeft, alignRight})

	for _, d := range ops {
		offset := strconv.Itoa(d.Offset)
		name := op.Name(d.Code)
		if colorEnabled {
			name = color.New(color.Bold).Sprint(name)
		}

		operands := ""
		if info, ok := op.GetInfo(d.Code); ok && info.HasArg {
			operands = strconv.Itoa(d.Arg)
		}

		regs := formatWireRegs(d.Regs, colorEnabled)

		label := ""
		if info, ok := op.GetInfo(d.Code); ok && info.IsBranch {
			label = strconv.Itoa(int(d.Label))
			if colorEnabled {
				label = color.New(color.FgYellow).Sprint(label)
			}
		}

		t.appendRow([]string{offset, name, operands, regs, label})
	}
	t.render()
	return nil
}

func formatWireRegs(regs []int32, colorEnabled bool) string {
	var parts []string
	for _, r := range regs {
		s := "_"
		if r >= 0 {
			s = "r" + strconv.Itoa(int(r))
		}
		if colorEnabled {
			s = color.New(color.FgCyan).Sprint(s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// PrintStatsJSON renders a Program's Stats as prettified, colorized JSON
// for the CLI's --json flag.
func PrintStatsJSON(p *ir.Program, w io.Writer) error {
	b, err := prettyjson.Marshal(p.Stats())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

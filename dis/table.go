package dis

import (
	"fmt"
	"io"
	"strings"
)

// alignment controls how a column's cells are padded.
type alignment int

const (
	alignLeft alignment = iota
	alignRight
	alignCenter
)

// table renders a header and rows as a box-drawn grid, matching the
// teacher's internal/table package's output shape (+---+---+ borders,
// | cell | cell |). That package (and the wonton helpers its own test
// imports) is not part of this module's dependency graph, so this is a
// small from-scratch renderer rather than a reuse of unavailable code.
type table struct {
	w         io.Writer
	header    []string
	headerAln []alignment
	colAln    []alignment
	rows      [][]string
}

func newTable(w io.Writer) *table {
	return &table{w: w}
}

func (t *table) withHeader(h []string) *table {
	t.header = h
	return t
}

func (t *table) withHeaderAlignment(a []alignment) *table {
	t.headerAln = a
	return t
}

func (t *table) withColumnAlignment(a []alignment) *table {
	t.colAln = a
	return t
}

func (t *table) appendRow(row []string) *table {
	t.rows = append(t.rows, row)
	return t
}

func (t *table) render() {
	numCols := len(t.header)
	widths := make([]int, numCols)
	for i, h := range t.header {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	border := t.borderLine(widths)
	fmt.Fprintln(t.w, border)
	fmt.Fprintln(t.w, t.rowLine(t.header, widths, t.headerAln, alignCenter))
	fmt.Fprintln(t.w, border)
	for _, row := range t.rows {
		fmt.Fprintln(t.w, t.rowLine(row, widths, t.colAln, alignLeft))
	}
	fmt.Fprintln(t.w, border)
}

func (t *table) borderLine(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteByte('+')
	}
	return sb.String()
}

func (t *table) rowLine(cells []string, widths []int, alns []alignment, def alignment) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		aln := def
		if i < len(alns) {
			aln = alns[i]
		}
		sb.WriteByte(' ')
		sb.WriteString(pad(cell, w, aln))
		sb.WriteByte(' ')
		sb.WriteByte('|')
	}
	return sb.String()
}

func pad(s string, width int, aln alignment) string {
	// visibleLen ignores ANSI escapes so colorized cells still align.
	n := visibleLen(s)
	gap := width - n
	if gap <= 0 {
		return s
	}
	switch aln {
	case alignRight:
		return strings.Repeat(" ", gap) + s
	case alignCenter:
		left := gap / 2
		right := gap - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// visibleLen counts runes outside ANSI SGR escape sequences ("\x1b[...m"),
// so a colorized cell doesn't out-pad a plain one.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		if r == 0x1b {
			inEscape = true
			continue
		}
		n++
	}
	return n
}

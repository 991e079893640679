package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableRendersAlignedColumns(t *testing.T) {
	var buf bytes.Buffer
	tb := newTable(&buf).
		withHeader([]string{"HEADER1", "H2", "h3"}).
		withColumnAlignment([]alignment{alignLeft, alignRight, alignLeft}).
		withHeaderAlignment([]alignment{alignCenter, alignCenter, alignCenter}).
		appendRow([]string{"ROW1", "ROW2", "foo bar"}).
		appendRow([]string{"a", "b", "c"})
	tb.render()

	expected := `
+---------+------+---------+
| HEADER1 |  H2  |   h3    |
+---------+------+---------+
| ROW1    | ROW2 | foo bar |
| a       |    b | c       |
+---------+------+---------+
`
	require.Equal(t, strings.TrimSpace(expected)+"\n", buf.String())
}

func TestTableIgnoresAnsiEscapesWhenPadding(t *testing.T) {
	var buf bytes.Buffer
	colored := "\x1b[1mBold\x1b[0m"
	tb := newTable(&buf).
		withHeader([]string{"A"}).
		appendRow([]string{colored})
	tb.render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		require.Equal(t, len(lines[0]), len(stripANSI(l)))
	}
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		if r == '\x1b' {
			inEscape = true
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

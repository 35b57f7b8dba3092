package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Diff prints a line-oriented diff between before and after.
// Unchanged lines are prefixed with two spaces, removed lines with "- " and added lines with "+ ".
func (p *Printer) Diff(before, after string) {
	var b strings.Builder
	for _, line := range DiffLines(before, after) {
		switch line[0] {
		case '+':
			line = p.styleLine(insertStyle, line)
		case '-':
			line = p.styleLine(deleteStyle, line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	p.write(b.String())
}

func (p *Printer) styleLine(style lipgloss.Style, line string) string {
	if !p.styled {
		return line
	}
	return style.Render(line)
}

// DiffLines computes a line diff and returns it as prefixed lines.
func DiffLines(before, after string) []string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lines := dmp.DiffLinesToChars(ensureNewline(before), ensureNewline(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	var out []string
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return out
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

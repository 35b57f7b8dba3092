// Package output provides the user-facing console output for codingwithyou.
// Notices play the role of editor message boxes; completions can be previewed as rendered markdown.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"
)

// Printer writes styled or plain output.
type Printer struct {
	writer     io.Writer
	styled     bool
	forcePlain bool
	wordWrap   int
	styles     map[SemanticType]lipgloss.Style

	mu sync.Mutex
}

// NewPrinter creates a Printer writing to os.Stdout by default.
// Styling is enabled when the writer is a color-capable terminal and NO_COLOR is unset.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer:   os.Stdout,
		wordWrap: 80,
		styles:   defaultStyles(),
	}

	for _, opt := range options {
		opt(p)
	}

	if !p.forcePlain {
		p.styled = supportsColor(p.writer)
	}
	return p
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text)
}

// Info outputs informational text with info styling.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text)
}

// Success outputs success text with success styling.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text)
}

// Warning outputs warning text with warning styling.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text)
}

// Error outputs error text with error styling.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text)
}

// IsStyled reports whether the printer emits ANSI styling.
func (p *Printer) IsStyled() bool {
	return p.styled
}

func (p *Printer) output(semantic SemanticType, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var rendered string
	if p.styled {
		rendered = p.styles[semantic].Render(text)
	} else {
		rendered = plainPrefix(semantic) + ansi.Strip(text)
	}

	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, _ = fmt.Fprint(p.writer, rendered)
}

// write emits already-rendered text verbatim.
func (p *Printer) write(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprint(p.writer, text)
}

func plainPrefix(semantic SemanticType) string {
	switch semantic {
	case SemanticWarning:
		return "Warning: "
	case SemanticError:
		return "Error: "
	default:
		return ""
	}
}

func defaultStyles() map[SemanticType]lipgloss.Style {
	return map[SemanticType]lipgloss.Style{
		SemanticPlain:   lipgloss.NewStyle(),
		SemanticInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		SemanticSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		SemanticWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		SemanticError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

// supportsColor checks NO_COLOR and the terminal profile of w.
func supportsColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return termenv.NewOutput(file).ColorProfile() != termenv.Ascii
}

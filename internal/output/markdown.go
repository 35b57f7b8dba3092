package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// Markdown prints markdown, rendered with glamour when the printer is styled.
func (p *Printer) Markdown(markdown string) error {
	if !p.styled {
		text := ansi.Strip(markdown)
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		p.write(text)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(p.wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	p.write(rendered)
	return nil
}

// FenceCode wraps code in a markdown code fence for language.
func FenceCode(code, language string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	return fence + language + "\n" + strings.TrimSuffix(code, "\n") + "\n" + fence
}

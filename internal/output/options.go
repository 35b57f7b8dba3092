package output

import "io"

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithWriter configures the printer to write output to the specified writer.
// Default is os.Stdout if not specified.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithWordWrap sets the column markdown is wrapped at.
func WithWordWrap(width int) Option {
	return func(p *Printer) {
		if width > 0 {
			p.wordWrap = width
		}
	}
}

// PlainText forces plain output regardless of terminal capabilities.
func PlainText() Option {
	return func(p *Printer) {
		p.forcePlain = true
	}
}

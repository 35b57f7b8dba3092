// Package input asks the user for values, the terminal counterpart of an editor input box.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"codingwithyou/internal/logger"
)

// Request describes a single question shown to the user.
type Request struct {
	Label       string
	Placeholder string
	Masked      bool
}

// Prompter asks the user for a single line of input.
// An empty answer with a nil error means the user declined.
type Prompter interface {
	Prompt(ctx context.Context, req Request) (string, error)
}

// TerminalPrompter reads answers from the controlling terminal.
// When stdin carries the selection, it falls back to /dev/tty.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter creates a prompter that writes its labels to out.
func NewTerminalPrompter(out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: out}
}

// Prompt shows req.Label and reads one line. Masked requests do not echo.
func (p *TerminalPrompter) Prompt(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	in, closeIn, err := p.terminal()
	if err != nil {
		logger.Debug("No terminal available for prompt", "label", req.Label, "error", err)
		return "", nil
	}
	defer closeIn()

	label := req.Label
	if req.Placeholder != "" {
		label = fmt.Sprintf("%s (%s)", label, req.Placeholder)
	}
	_, _ = fmt.Fprintf(p.out, "%s: ", label)

	if req.Masked {
		raw, err := term.ReadPassword(int(in.Fd()))
		_, _ = fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// terminal returns a file attached to a terminal.
func (p *TerminalPrompter) terminal() (*os.File, func(), error) {
	if term.IsTerminal(int(p.in.Fd())) {
		return p.in, func() {}, nil
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		return nil, nil, err
	}
	return tty, func() { _ = tty.Close() }, nil
}

// StaticPrompter answers every prompt from a fixed queue.
// It records the requests it received.
type StaticPrompter struct {
	Answers  []string
	Requests []Request
}

// Prompt pops the next answer. An exhausted queue answers with the empty string.
func (s *StaticPrompter) Prompt(_ context.Context, req Request) (string, error) {
	s.Requests = append(s.Requests, req)
	if len(s.Answers) == 0 {
		return "", nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

// Calls returns how many prompts were shown.
func (s *StaticPrompter) Calls() int {
	return len(s.Requests)
}

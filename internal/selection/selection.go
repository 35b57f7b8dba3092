// Package selection reads the text a code command operates on.
// A selection comes from a file (optionally narrowed to a line range), the clipboard, or a reader such as stdin.
package selection

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codingwithyou/internal/logger"
)

// ErrEmptySelection is returned when the selected text is empty or whitespace only.
var ErrEmptySelection = errors.New("no code selected")

// Selection is the text a command works on.
type Selection struct {
	Text     string
	Source   string // "file", "clipboard" or "stdin"
	Path     string // set for file selections
	Language string // markdown fence language, may be empty
}

// LineRange is a 1-based inclusive range of lines. Zero bounds are open.
type LineRange struct {
	Start int
	End   int
}

// IsZero reports whether the range selects the whole file.
func (r LineRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// ParseLineRange parses "N", "N:M", "N:" or ":M".
func ParseLineRange(value string) (LineRange, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return LineRange{}, nil
	}

	startStr, endStr, hasColon := strings.Cut(value, ":")
	var r LineRange
	var err error

	if startStr != "" {
		if r.Start, err = strconv.Atoi(startStr); err != nil || r.Start < 1 {
			return LineRange{}, fmt.Errorf("invalid line range %q: start must be a positive number", value)
		}
	}

	if !hasColon {
		r.End = r.Start
		return r, nil
	}

	if endStr != "" {
		if r.End, err = strconv.Atoi(endStr); err != nil || r.End < 1 {
			return LineRange{}, fmt.Errorf("invalid line range %q: end must be a positive number", value)
		}
	}

	if r.Start != 0 && r.End != 0 && r.End < r.Start {
		return LineRange{}, fmt.Errorf("invalid line range %q: end before start", value)
	}
	return r, nil
}

// Extract returns the lines of text covered by r.
func (r LineRange) Extract(text string) string {
	if r.IsZero() {
		return text
	}

	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	start := r.Start
	if start == 0 {
		start = 1
	}
	end := r.End
	if end == 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.TrimSuffix(strings.Join(lines[start-1:end], ""), "\n")
}

// FromFile reads the selection from path, limited to r.
func FromFile(path string, r LineRange) (*Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := r.Extract(string(data))
	logger.Debug("Selection read from file", "path", path, "start", r.Start, "end", r.End, "length", len(text))

	return validate(&Selection{
		Text:     text,
		Source:   "file",
		Path:     path,
		Language: LanguageForPath(path),
	})
}

// FromReader reads the whole reader as the selection.
func FromReader(r io.Reader, language string) (*Selection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	logger.Debug("Selection read from stdin", "length", len(data))
	return validate(&Selection{
		Text:     strings.TrimSuffix(string(data), "\n"),
		Source:   "stdin",
		Language: language,
	})
}

// FromClipboard reads the selection from the system clipboard.
func FromClipboard(language string) (*Selection, error) {
	text, err := readClipboard()
	if err != nil {
		return nil, err
	}

	logger.Debug("Selection read from clipboard", "length", len(text))
	return validate(&Selection{
		Text:     text,
		Source:   "clipboard",
		Language: language,
	})
}

func validate(sel *Selection) (*Selection, error) {
	if strings.TrimSpace(sel.Text) == "" {
		return nil, ErrEmptySelection
	}
	return sel, nil
}

var extensionLanguages = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".sh":    "bash",
	".bash":  "bash",
	".sql":   "sql",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".html":  "html",
	".css":   "css",
	".lua":   "lua",
}

// LanguageForPath guesses the fence language from a file extension.
func LanguageForPath(path string) string {
	return extensionLanguages[strings.ToLower(filepath.Ext(path))]
}

// ClipboardAvailable reports whether FromClipboard can work on this platform.
func ClipboardAvailable() bool {
	return clipboardAvailable
}

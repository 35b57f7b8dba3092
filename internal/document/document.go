// Package document manages the side-by-side documents completions are written into.
package document

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"codingwithyou/internal/logger"
)

// Placeholder is the body a document shows while the request is in flight.
const Placeholder = "Waiting for response..."

// Document is a single output file.
type Document struct {
	ID       string
	Path     string
	Title    string
	Language string

	mu   sync.Mutex
	body string
}

// Body returns the current body.
func (d *Document) Body() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.body
}

// Replace overwrites the whole document with body.
func (d *Document) Replace(body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.WriteFile(d.Path, []byte(body), 0600); err != nil {
		return fmt.Errorf("failed to write document %s: %w", d.Path, err)
	}
	d.body = body

	logger.Debug("Document replaced", "id", d.ID, "path", d.Path, "length", len(body))
	return nil
}

// Workspace creates documents in a directory.
type Workspace struct {
	dir string
}

// NewWorkspace creates a Workspace rooted at dir. The directory is created on first use.
func NewWorkspace(dir string) *Workspace {
	return &Workspace{dir: dir}
}

// Open creates a new document showing Placeholder.
// name is used as the file name prefix, language picks the file extension.
func (w *Workspace) Open(name, title, language string) (*Document, error) {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	id := uuid.New().String()
	doc := &Document{
		ID:       id,
		Path:     filepath.Join(w.dir, fmt.Sprintf("%s-%s.md", sanitize(name), id[:8])),
		Title:    title,
		Language: language,
	}

	if err := doc.Replace(Placeholder); err != nil {
		return nil, err
	}

	logger.Debug("Document opened", "id", id, "path", doc.Path, "title", title)
	return doc, nil
}

func sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "untitled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}

// Viewer shows a document to the user.
type Viewer interface {
	Show(doc *Document) error
}

// EditorViewer opens documents in an external editor.
type EditorViewer struct {
	command string
}

// NewEditorViewer creates a viewer running command.
// An empty command falls back to $VISUAL, $EDITOR, then common editors on PATH.
func NewEditorViewer(command string) *EditorViewer {
	return &EditorViewer{command: command}
}

// Show runs the editor on the document and waits for it to exit.
func (v *EditorViewer) Show(doc *Document) error {
	editorCmd := v.editorCommand()
	if editorCmd == "" {
		return fmt.Errorf("no editor configured or found")
	}

	parts := strings.Fields(editorCmd)
	cmd := exec.Command(parts[0], append(parts[1:], doc.Path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Debug("Opening editor", "editor", editorCmd, "file", doc.Path)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// editorCommand determines which editor to use based on configuration and environment.
func (v *EditorViewer) editorCommand() string {
	if strings.TrimSpace(v.command) != "" {
		return v.command
	}

	for _, env := range []string{"VISUAL", "EDITOR"} {
		if editor := os.Getenv(env); editor != "" {
			logger.Debug("Using editor from environment", "variable", env, "editor", editor)
			return editor
		}
	}

	for _, editor := range []string{"code", "nvim", "vim", "nano", "emacs"} {
		if _, err := exec.LookPath(editor); err == nil {
			logger.Debug("Found editor in PATH", "editor", editor)
			return editor
		}
	}

	return ""
}

//go:build !linux

package selection

import (
	"fmt"

	"golang.design/x/clipboard"
)

// clipboardAvailable indicates if clipboard functionality is available on this platform
const clipboardAvailable = true

// readClipboard returns the text currently on the system clipboard
func readClipboard() (string, error) {
	if err := clipboard.Init(); err != nil {
		return "", fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}

//go:build linux

package selection

import "fmt"

// clipboardAvailable indicates if clipboard functionality is available on this platform
const clipboardAvailable = false

// readClipboard returns an error indicating clipboard is not available
func readClipboard() (string, error) {
	return "", fmt.Errorf("clipboard not available on this platform (Linux without X11)")
}

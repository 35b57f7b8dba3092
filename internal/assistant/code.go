package assistant

import "strings"

// ExtractCode returns the body of the first fenced code block in text,
// or the trimmed text itself when it contains no fence.
func ExtractCode(text string) string {
	lines := strings.Split(text, "\n")

	start := -1
	var fence string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if start < 0 {
			if strings.HasPrefix(trimmed, "```") {
				fence = trimmed[:len(trimmed)-len(strings.TrimLeft(trimmed, "`"))]
				start = i + 1
			}
			continue
		}
		if trimmed == fence {
			return strings.Join(lines[start:i], "\n")
		}
	}

	if start >= 0 {
		return strings.Join(lines[start:], "\n")
	}
	return strings.TrimSpace(text)
}

package completion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"codingwithyou/internal/logger"
)

// Chunk is one JSON document from the response stream.
type Chunk struct {
	Content      string
	HasError     bool
	ErrorMessage string
}

// Decoder splits a response body into JSON documents.
// A document may span several lines or arrive across several network reads;
// it is emitted once the accumulated text is valid JSON.
// Server-sent-event framing ("data:" prefixes, comments, "event:", "id:" and
// "retry:" fields, "[DONE]") is tolerated. Text that can never become a document
// is dropped as soon as a complete document follows it.
type Decoder struct {
	r       *bufio.Reader
	pending strings.Builder
	done    bool
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Each calls fn for every document until fn returns false, the stream ends, or "[DONE]" is read.
func (d *Decoder) Each(fn func(Chunk) bool) error {
	for !d.done {
		line, err := d.r.ReadString('\n')
		if line != "" {
			chunk, ok := d.feed(line)
			if ok && !fn(chunk) {
				return nil
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading stream: %w", err)
		}
	}

	if rest := strings.TrimSpace(d.pending.String()); rest != "" && !d.done {
		return fmt.Errorf("incomplete JSON document at end of stream: %s", truncate(rest, 80))
	}
	return nil
}

// feed adds a line to the pending document and returns a chunk once one is complete.
func (d *Decoder) feed(line string) (Chunk, bool) {
	trimmed := strings.TrimSpace(line)

	if d.pending.Len() == 0 {
		if trimmed == "" || isEventField(trimmed) {
			return Chunk{}, false
		}
		trimmed = stripData(trimmed)
		if trimmed == "[DONE]" {
			d.done = true
			return Chunk{}, false
		}
	} else {
		if candidate := stripData(trimmed); d.stale(line) && gjson.Valid(candidate) {
			logger.Warn("Discarding unparseable stream data", "data", truncate(d.pending.String(), 80))
			d.pending.Reset()
			return parseChunk(candidate), true
		}
		d.pending.WriteByte('\n')
	}
	d.pending.WriteString(trimmed)

	doc := d.pending.String()
	if !gjson.Valid(doc) {
		return Chunk{}, false
	}
	d.pending.Reset()
	return parseChunk(doc), true
}

// stale reports whether the pending text should give way to a document starting at line.
// Pending text that does not open an object or array never completes; otherwise
// only an unindented line starts a new document.
func (d *Decoder) stale(line string) bool {
	pending := d.pending.String()
	if pending[0] != '{' && pending[0] != '[' {
		return true
	}
	return line != "" && line[0] != ' ' && line[0] != '\t'
}

func isEventField(line string) bool {
	for _, prefix := range []string{":", "event:", "id:", "retry:"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func stripData(line string) string {
	if rest, ok := strings.CutPrefix(line, "data:"); ok {
		return strings.TrimSpace(rest)
	}
	return line
}

func parseChunk(doc string) Chunk {
	parsed := gjson.Parse(doc)
	var chunk Chunk

	errValue := parsed.Get("error")
	switch {
	case errValue.IsObject():
		chunk.HasError = true
		chunk.ErrorMessage = errValue.Get("message").String()
		if chunk.ErrorMessage == "" {
			chunk.ErrorMessage = errValue.Raw
		}
		return chunk
	case errValue.Type == gjson.String && errValue.String() != "":
		chunk.HasError = true
		chunk.ErrorMessage = errValue.String()
		return chunk
	}

	if content := parsed.Get("choices.0.message.content"); content.Exists() {
		chunk.Content = content.String()
	} else {
		chunk.Content = parsed.Get("choices.0.delta.content").String()
	}
	return chunk
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffLines(t *testing.T) {
	before := "a := 1\nb := 2\nreturn a + b"
	after := "a := 1\nreturn a + 2\n"

	assert.Equal(t, []string{
		"  a := 1",
		"- b := 2",
		"- return a + b",
		"+ return a + 2",
	}, DiffLines(before, after))
}

func TestDiffLines_Identical(t *testing.T) {
	assert.Equal(t, []string{"  same"}, DiffLines("same", "same\n"))
}

func TestPrinter_DiffPlain(t *testing.T) {
	p, buf := newBufferPrinter()
	p.Diff("x\n", "y\n")
	assert.Equal(t, "- x\n+ y\n", buf.String())
}

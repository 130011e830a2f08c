package utils

import (
	"os"

	"golang.org/x/term"
)

// TermWidth returns the current width of the stdout terminal, -1 when it
// cannot be determined. The renderer re-queries this per record so
// resizes take effect mid-stream.
func TermWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return -1
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return -1
	}
	return width
}

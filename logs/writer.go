// Package logs writes rendered lines to the terminal stream and an
// optional capture file.
package logs

import (
	"bufio"
	"io"
	"os"
	"regexp"

	log "github.com/sirupsen/logrus"
)

// escapeCodes matches the ANSI SGR sequences the renderer emits.
var escapeCodes = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Strip removes color escape sequences from a rendered line.
func Strip(line string) string {
	return escapeCodes.ReplaceAllString(line, "")
}

// Writer is the output sink. The terminal stream receives lines as
// rendered; the file, when set, always receives them plain, since files
// are never color-enabled. A failed write is fatal to the stream and is
// returned to the caller, never swallowed.
type Writer struct {
	out  io.Writer
	file *os.File
	buf  *bufio.Writer
}

// NewWriter wires the sink. path is the optional capture file, opened in
// append mode.
func NewWriter(out io.Writer, path string) (*Writer, error) {
	w := &Writer{out: out}
	if path != "" {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		w.file = file
		w.buf = bufio.NewWriter(file)
		log.Infof("[writer] capturing plain output to %s", path)
	}
	return w, nil
}

// WriteLine emits one display line to every sink.
func (w *Writer) WriteLine(line string) error {
	if _, err := io.WriteString(w.out, line+"\n"); err != nil {
		return err
	}
	if w.buf != nil {
		if _, err := w.buf.WriteString(Strip(line) + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the capture file, if any. Safe to call twice.
func (w *Writer) Close() error {
	if w.buf == nil {
		return nil
	}
	buf, file := w.buf, w.file
	w.buf, w.file = nil, nil
	if err := buf.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

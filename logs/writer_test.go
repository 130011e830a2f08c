package logs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrip(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("plain", Strip("plain"))
	assert.Equal(" D  started", Strip("\x1b[30;42m D \x1b[0m started"))
	assert.Equal("TimeoutJob", Strip("\x1b[31mTimeoutJob\x1b[0m"))
}

func TestWriteLineToStreamOnly(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	w, err := NewWriter(out, "")
	assert.NoError(err)
	assert.NoError(w.WriteLine("\x1b[31mred\x1b[0m"))
	assert.NoError(w.Close())
	assert.Equal("\x1b[31mred\x1b[0m\n", out.String())
}

func TestFileSinkIsAlwaysPlain(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "capture.log")
	out := &bytes.Buffer{}
	w, err := NewWriter(out, path)
	require.NoError(t, err)

	assert.NoError(w.WriteLine("\x1b[31mTimeoutJob\x1b[0m  D  started"))
	assert.NoError(w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("TimeoutJob  D  started\n", string(data))
	assert.Contains(out.String(), "\x1b[31m")
}

func TestCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	w, err := NewWriter(&bytes.Buffer{}, path)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, os.ErrClosed
}

func TestWriteFailureSurfaces(t *testing.T) {
	w, err := NewWriter(failingWriter{}, "")
	require.NoError(t, err)
	assert.Error(t, w.WriteLine("line"))
}

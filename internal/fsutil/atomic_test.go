package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "file.txt")

	require.NoError(t, WriteFile(target, []byte("hello world"), 0o640))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
	assert.Equal(t, os.FileMode(0o640), Mode(target, 0o644))
}

func TestWriteFunc_FailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(target, []byte("original"), 0o644))

	boom := errors.New("boom")
	err := WriteFunc(target, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be cleaned up")
}

func TestMode_Missing(t *testing.T) {
	assert.Equal(t, os.FileMode(0o600), Mode(filepath.Join(t.TempDir(), "nope"), 0o600))
}

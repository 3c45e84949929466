package source

// Test Plan for source loaders:
// - Line endings are normalized to LF for CRLF and lone CR input
// - FileLoader wraps read errors with the path
// - MemoryLoader serves cleaned paths and reports fs.ErrNotExist

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lf untouched", "a\nb\n", "a\nb\n"},
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"lone cr", "a\rb", "a\nb"},
		{"mixed", "a\r\nb\rc\n", "a\nb\nc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Normalize([]byte(tt.in))))
		})
	}
}

func TestFileLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("export const a = 1;\r\n"), 0o644))

	data, err := FileLoader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "export const a = 1;\n", string(data))

	_, err = FileLoader{}.Load(filepath.Join(dir, "missing.ts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.ts")
}

func TestMemoryLoader(t *testing.T) {
	t.Parallel()

	l := NewMemoryLoader(map[string]string{"/src/./a.ts": "let a = 1;\r\n"})
	data, err := l.Load("/src/a.ts")
	require.NoError(t, err)
	assert.Equal(t, "let a = 1;\n", string(data))

	l.Put("/src/b.ts", "let b = 2;")
	data, err = l.Load("/src/b.ts")
	require.NoError(t, err)
	assert.Equal(t, "let b = 2;", string(data))

	_, err = l.Load("/src/c.ts")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

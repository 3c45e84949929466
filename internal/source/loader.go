// Package source reads TypeScript sources for extraction.
package source

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Loader reads the content of a source file by path.
type Loader interface {
	Load(path string) ([]byte, error)
}

// FileLoader reads files from disk.
type FileLoader struct{}

// Load reads path and normalizes line endings to "\n".
func (FileLoader) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Normalize(data), nil
}

// MemoryLoader serves in-memory file contents keyed by cleaned path.
type MemoryLoader struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryLoader returns a loader over the given path -> content map.
func NewMemoryLoader(files map[string]string) *MemoryLoader {
	m := &MemoryLoader{files: make(map[string][]byte, len(files))}
	for p, content := range files {
		m.files[filepath.Clean(p)] = []byte(content)
	}
	return m
}

// Put adds or replaces a file.
func (m *MemoryLoader) Put(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = []byte(content)
}

// Load returns the normalized content of path or an fs.ErrNotExist error.
func (m *MemoryLoader) Load(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return Normalize(data), nil
}

// Normalize converts CRLF and lone CR line endings to LF. The input is not
// modified.
func Normalize(data []byte) []byte {
	if bytes.IndexByte(data, '\r') < 0 {
		return data
	}
	out := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(out, []byte("\r"), []byte("\n"))
}

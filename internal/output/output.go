// Package output encodes extraction results as JSON or YAML.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/declmeta/internal/config"
)

// ErrUnknownFormat is returned for a format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Encode writes v to w in the given format. Indent is the number of spaces
// per level; 0 writes compact JSON and default-indented YAML.
//
// YAML is produced from the JSON encoding so both formats share the same keys
// and field order.
func Encode(w io.Writer, v any, format string, indent int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	switch strings.ToLower(format) {
	case config.FormatJSON, "":
		return writeJSON(w, data, indent)
	case config.FormatYAML:
		return writeYAML(w, data, indent)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteFile encodes v into path, creating parent directories. The file is
// replaced atomically so watchers of the output never see a partial result.
func WriteFile(path string, v any, format string, indent int) error {
	var buf bytes.Buffer
	if err := Encode(&buf, v, format, indent); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// FormatFor guesses the format from a file extension, falling back to def.
func FormatFor(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return config.FormatYAML
	case ".json":
		return config.FormatJSON
	}
	return def
}

func writeJSON(w io.Writer, data []byte, indent int) error {
	if indent > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", strings.Repeat(" ", indent)); err != nil {
			return fmt.Errorf("failed to indent result: %w", err)
		}
		data = buf.Bytes()
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, data []byte, indent int) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to convert result to yaml: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles JSON input carries. The
// encoder re-quotes any scalar whose plain form would change type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

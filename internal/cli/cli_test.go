package cli

// Test Plan for CLI commands:
// - Flags override configured backend and format; --out extension picks the format
// - extract walks directories through include/ignore patterns and prints JSON
// - extract writes YAML to --out and reports skipped files
// - extract fails on unknown backends, formats and empty inputs
// - watch writes the initial result and rewrites it after a change
// - version prints build information

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/declmeta/internal/backend"
	"github.com/mvp-joe/declmeta/internal/config"
	"github.com/mvp-joe/declmeta/internal/output"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestExtractOptions_Resolved(t *testing.T) {
	t.Parallel()

	c := config.Default()
	c.Extract.Backend = backend.NameSemantic

	tests := []struct {
		name        string
		opts        extractOptions
		wantBackend string
		wantFormat  string
	}{
		{"config defaults", extractOptions{}, backend.NameSemantic, config.FormatJSON},
		{"flags win", extractOptions{backend: "syntactic", format: "YAML"}, "syntactic", config.FormatYAML},
		{"out extension", extractOptions{out: "meta.yml"}, backend.NameSemantic, config.FormatYAML},
		{"format flag beats extension", extractOptions{out: "meta.yml", format: "json"}, backend.NameSemantic, config.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, format, err := tt.opts.resolved(c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBackend, name)
			assert.Equal(t, tt.wantFormat, format)
		})
	}

	_, _, err := extractOptions{format: "xml"}.resolved(c)
	assert.ErrorIs(t, err, output.ErrUnknownFormat)
}

func TestExtract_DirectoryToStdout(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"src/model.ts":              "export interface User { id: number }\n",
		"src/service.ts":            "import { User } from \"./model\";\nexport function load(): User { return { id: 1 }; }\n",
		"node_modules/lib/index.ts": "export const vendored = true;\n",
		"README.md":                 "# not code\n",
	})

	var stdout, stderr bytes.Buffer
	skipped, err := extract(context.Background(), &stdout, &stderr, config.Default(), extractOptions{backend: "semantic", quiet: true}, []string{dir})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Empty(t, stderr.String(), "quiet run writes nothing to stderr")

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Contains(t, out["interfaces"], "User")
	assert.Contains(t, out["functions"], "load")
	assert.NotContains(t, out["variables"], "vendored")
}

func TestExtract_YAMLFileWithSkippedFiles(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"ok.ts":  "export const ok = 1;\n",
		"bad.ts": "export const = ;\n",
	})
	outPath := filepath.Join(dir, "out", "meta.yaml")

	var stdout, stderr bytes.Buffer
	skipped, err := extract(context.Background(), &stdout, &stderr, config.Default(),
		extractOptions{backend: "syntactic", out: outPath}, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "bad.ts")}, skipped)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "skipped: "+filepath.Join(dir, "bad.ts"))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Contains(t, out["variables"], "ok")
	assert.Contains(t, out, "hooks")
}

func TestExtract_Errors(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.ts": "export const a = 1;\n"})
	empty := t.TempDir()

	tests := []struct {
		name string
		opts extractOptions
		args []string
		want error
	}{
		{"unknown backend", extractOptions{backend: "babel", quiet: true}, []string{dir}, backend.ErrUnknownBackend},
		{"unknown format", extractOptions{format: "xml", quiet: true}, []string{dir}, output.ErrUnknownFormat},
		{"no files", extractOptions{quiet: true}, []string{empty}, ErrNoFiles},
		{"missing path", extractOptions{quiet: true}, []string{filepath.Join(dir, "missing")}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := extract(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, config.Default(), tt.opts, tt.args)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWatch_RewritesOutputOnChange(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.ts": "export const first = 1;\n"})
	outPath := filepath.Join(t.TempDir(), "meta.json")

	c := config.Default()
	c.Watch.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu      sync.Mutex
		batches int
	)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, &bytes.Buffer{}, c, extractOptions{backend: "semantic", out: outPath, quiet: true}, dir,
			func(changed []string, err error) {
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					batches++
				}
			})
	}()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	readOut := func() string {
		data, _ := os.ReadFile(outPath)
		return string(data)
	}
	require.Eventually(t, func() bool { return strings.Contains(readOut(), "first") }, 5*time.Second, 20*time.Millisecond)

	// The watch may still be registering directories, so keep touching the
	// file at an interval longer than the debounce.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "b.ts"), []byte("export const second = 2;\n"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		return batches > 0 && strings.Contains(readOut(), "second")
	}, 10*time.Second, 250*time.Millisecond)
}

func TestWatch_RequiresOut(t *testing.T) {
	t.Parallel()

	err := watch(context.Background(), &bytes.Buffer{}, config.Default(), extractOptions{}, t.TempDir(), nil)
	assert.ErrorContains(t, err, "--out")
}

func TestVersionCommand(t *testing.T) {
	// Not parallel: executes the shared root command.
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--dir", t.TempDir()})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "declmeta "+Version)
	assert.Contains(t, out.String(), "backends: semantic, syntactic, auto")
	require.NotNil(t, cfg)
	assert.Equal(t, config.Default(), cfg)
}

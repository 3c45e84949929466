package mcp

// Test Plan for extract_declarations:
// - Registration on a server does not panic and can be repeated
// - In-memory files are extracted without touching disk, paths default to sorted keys
// - Disk paths are read through the file loader
// - The backend argument selects the extractor; unknown names are tool errors
// - Missing files and paths produce a tool error
// - Identical requests are served from the cache; changed content misses
// - Arguments sent as JSON strings are decoded before binding

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/declmeta/internal/config"
)

func callExtract(t *testing.T, cache *ResultCache, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	handler := createExtractHandler(cache, nil)
	request := mcp.CallToolRequest{}
	request.Params.Name = ExtractToolName
	request.Params.Arguments = args
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	return out
}

func newTestCache(t *testing.T) *ResultCache {
	t.Helper()
	cache, err := NewResultCache(16, time.Minute)
	require.NoError(t, err)
	t.Cleanup(cache.close)
	return cache
}

func TestAddExtractTool_Registration(t *testing.T) {
	t.Parallel()

	mcpServer := server.NewMCPServer("test-server", "1.0.0", server.WithToolCapabilities(true))
	require.NotPanics(t, func() {
		AddExtractTool(mcpServer, nil, nil)
		AddExtractTool(mcpServer, newTestCache(t), nil)
	})
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	s, err := NewServer(config.Default().Server, "test", nil)
	require.NoError(t, err)
	assert.NotNil(t, s.mcp)
	assert.NoError(t, s.Close())
}

func TestExtract_InMemoryFiles(t *testing.T) {
	t.Parallel()

	result := callExtract(t, nil, map[string]any{
		"files": map[string]any{
			"b.ts": "export function greet(name: string): string { return name; }",
			"a.ts": "export const answer: number = 42;",
		},
		"backend": "semantic",
	})
	out := decodeResult(t, result)

	functions := out["functions"].(map[string]any)
	assert.Contains(t, functions, "greet")
	variables := out["variables"].(map[string]any)
	assert.Contains(t, variables, "answer")
	assert.NotContains(t, out, "hooks")
}

func TestExtract_PathsSelectFromFiles(t *testing.T) {
	t.Parallel()

	result := callExtract(t, nil, map[string]any{
		"files": map[string]any{
			"a.ts": "export const a = 1;",
			"b.ts": "export const b = 2;",
		},
		"paths":   []any{"b.ts"},
		"backend": "syntactic",
	})
	out := decodeResult(t, result)

	variables := out["variables"].(map[string]any)
	assert.Contains(t, variables, "b")
	assert.NotContains(t, variables, "a")
	assert.Contains(t, out, "hooks")
}

func TestExtract_DiskPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.ts")
	require.NoError(t, os.WriteFile(path, []byte("export interface User { id: number }\n"), 0o644))

	out := decodeResult(t, callExtract(t, nil, map[string]any{"paths": []any{path}}))
	interfaces := out["interfaces"].(map[string]any)
	assert.Contains(t, interfaces, "User")
}

func TestExtract_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"nothing to extract", map[string]any{}, "either files or paths is required"},
		{"unknown backend", map[string]any{"files": map[string]any{"a.ts": "const a = 1;"}, "backend": "babel"}, "unknown backend"},
		{"syntax error", map[string]any{"files": map[string]any{"a.ts": "export const = ;"}, "backend": "semantic"}, "extraction failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := callExtract(t, nil, tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestExtract_Cache(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t)
	args := func(content string) map[string]any {
		return map[string]any{"files": map[string]any{"a.ts": content}, "backend": "semantic"}
	}

	first := resultText(t, callExtract(t, cache, args("export const a = 1;")))
	second := resultText(t, callExtract(t, cache, args("export const a = 1;")))
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), cache.hits())

	changed := resultText(t, callExtract(t, cache, args("export const b = 1;")))
	assert.NotEqual(t, first, changed)
	assert.Equal(t, int64(1), cache.hits())
}

func TestContentKey(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{"a.ts": []byte("x"), "b.ts": []byte("y")}
	load := func(p string) ([]byte, error) {
		if data, ok := files[p]; ok {
			return data, nil
		}
		return nil, os.ErrNotExist
	}

	base := contentKey("semantic", []string{"a.ts", "b.ts"}, load)
	assert.Equal(t, base, contentKey("semantic", []string{"a.ts", "b.ts"}, load))
	assert.NotEqual(t, base, contentKey("syntactic", []string{"a.ts", "b.ts"}, load))
	assert.NotEqual(t, base, contentKey("semantic", []string{"b.ts", "a.ts"}, load))
	assert.NotEqual(t, base, contentKey("semantic", []string{"a.ts", "b.ts", "c.ts"}, load))
}

type argsOnly map[string]any

func (a argsOnly) GetArguments() map[string]any { return a }

func TestBindArguments_StringEncodedJSON(t *testing.T) {
	t.Parallel()

	var req ExtractRequest
	err := bindArguments(argsOnly{
		"files":   `{"a.ts": "const a = 1;"}`,
		"paths":   `["a.ts"]`,
		"backend": "syntactic",
	}, &req)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a.ts": "const a = 1;"}, req.Files)
	assert.Equal(t, []string{"a.ts"}, req.Paths)
	assert.Equal(t, "syntactic", req.Backend)
}

func TestBindArguments_CommaSeparatedPaths(t *testing.T) {
	t.Parallel()

	var req ExtractRequest
	require.NoError(t, bindArguments(argsOnly{"paths": "a.ts,b.ts"}, &req))
	assert.Equal(t, []string{"a.ts", "b.ts"}, req.Paths)
}

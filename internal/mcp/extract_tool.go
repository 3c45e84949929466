package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/declmeta/internal/backend"
	"github.com/mvp-joe/declmeta/internal/source"
)

// ExtractToolName is the registered name of the extraction tool.
const ExtractToolName = "extract_declarations"

// ExtractRequest is the argument shape of extract_declarations.
type ExtractRequest struct {
	// Files maps virtual paths to contents. When set, nothing is read from disk.
	Files map[string]string `json:"files,omitempty"`
	// Paths selects and orders the files to extract. Defaults to the sorted
	// keys of Files.
	Paths   []string `json:"paths,omitempty"`
	Backend string   `json:"backend,omitempty"`
}

// AddExtractTool registers extract_declarations with an MCP server. A nil
// cache disables result caching.
func AddExtractTool(s *server.MCPServer, cache *ResultCache, log *slog.Logger) {
	tool := mcp.NewTool(
		ExtractToolName,
		mcp.WithDescription("Extract declaration metadata (functions, variables, classes, interfaces, types, enums, imports, exports, modules, namespaces and React hooks) from TypeScript/TSX sources. Returns the metadata as JSON."),
		mcp.WithObject("files",
			mcp.Description("In-memory sources keyed by path, e.g. {\"index.ts\": \"export const a = 1;\"}. Takes precedence over reading from disk.")),
		mcp.WithArray("paths",
			mcp.Description("Files to extract, in order. Required when 'files' is omitted; otherwise selects from 'files'."),
			mcp.WithStringItems()),
		mcp.WithString("backend",
			mcp.Description("Extraction backend: 'semantic' (cross-file type inference), 'syntactic' (annotations plus component and hook analysis) or 'auto' (default)."),
			mcp.Enum(backend.Names()...)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createExtractHandler(cache, log))
}

func createExtractHandler(cache *ResultCache, log *slog.Logger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ExtractRequest
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		var loader source.Loader = source.FileLoader{}
		paths := args.Paths
		if len(args.Files) > 0 {
			loader = source.NewMemoryLoader(args.Files)
			if len(paths) == 0 {
				for p := range args.Files {
					paths = append(paths, p)
				}
				sort.Strings(paths)
			}
		}
		if len(paths) == 0 {
			return mcp.NewToolResultError("either files or paths is required"), nil
		}

		name := strings.ToLower(strings.TrimSpace(args.Backend))
		if name == "" {
			name = backend.NameAuto
		}
		ex, err := backend.New(name, backend.Options{Loader: loader, Logger: log})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var key string
		if cache != nil {
			key = contentKey(name, paths, loader.Load)
			if data, ok := cache.get(key); ok {
				log.Debug("extraction served from cache", "files", len(paths), "hits", cache.hits())
				return mcp.NewToolResultText(string(data)), nil
			}
		}

		md, err := ex.Extract(ctx, paths)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
		}

		jsonData, err := json.Marshal(md)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if cache != nil {
			cache.set(key, jsonData)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

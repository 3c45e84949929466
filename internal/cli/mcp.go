package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/declmeta/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve declaration extraction over the Model Context Protocol",
	Long: `Start a Model Context Protocol (MCP) server on stdio exposing the
extract_declarations tool.

The tool accepts in-memory sources ("files") or disk paths ("paths") and an
optional backend, and returns the metadata as JSON. Results are cached by
content hash (server.cache_size and server.cache_ttl in the configuration).

Logs are written to stderr; stdout carries the protocol.

Example:
  declmeta mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd.ErrOrStderr(), cfg, false)

	server, err := mcp.NewServer(cfg.Server, Version, log)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	return server.Serve(cmd.Context())
}

// Package mcp exposes declaration extraction as a Model Context Protocol tool
// served over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/declmeta/internal/config"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "declmeta"

// Server manages the MCP server lifecycle.
type Server struct {
	cache *ResultCache
	mcp   *server.MCPServer
	log   *slog.Logger
}

// NewServer creates a server with the extraction tool registered.
func NewServer(cfg config.ServerConfig, version string, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	cache, err := NewResultCache(cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	AddExtractTool(mcpServer, cache, log)

	return &Server{cache: cache, mcp: mcpServer, log: log}, nil
}

// Serve runs the server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting MCP server on stdio", "tool", ExtractToolName)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.log.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the result cache.
func (s *Server) Close() error {
	if s.cache != nil {
		s.cache.close()
	}
	return nil
}

// Package mcp implements the Model Context Protocol server, exposing
// kbmirror's operation surface to LLMs: addDocument, mirrorSource,
// listSources, listDocuments, removeDocument, removeSource, refreshSource,
// setVersionTracking, getQuote, setSizePolicy, setRefreshPolicy.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/kbmirror/internal/config"
	"github.com/jpl-au/kbmirror/internal/quote"
	"github.com/jpl-au/kbmirror/internal/reconcile"
	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// ErrUnauthorized is returned by write-side tools when AUTH_ENABLED is true
// and the caller's authToken argument doesn't match AUTH_TOKEN.
const ErrUnauthorized = "unauthorized: missing or invalid authToken"

// handlers provides MCP request handlers with access to the core services.
type handlers struct {
	store      store.Store
	sink       sink.KnowledgeSink
	reconciler *reconcile.Service
	quotes     *quote.Engine
	cfg        *config.Config
}

// requireAuth returns a result-level error unless AUTH_ENABLED is false or
// the supplied token matches AUTH_TOKEN. Every write-side tool must call
// this before mutating state.
func (h *handlers) requireAuth(token string) *mcp.CallToolResult {
	if !h.cfg.AuthEnabled {
		return nil
	}
	if token == "" || token != h.cfg.AuthToken {
		return mcp.NewToolResultError(ErrUnauthorized)
	}
	return nil
}

// Serve starts the MCP server over stdio.
func Serve(st store.Store, sk sink.KnowledgeSink, reconciler *reconcile.Service, quotes *quote.Engine, cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := &handlers{store: st, sink: sk, reconciler: reconciler, quotes: quotes, cfg: cfg}

	s := server.NewMCPServer(
		"kbmirror",
		Version,
		server.WithToolCapabilities(true),
	)

	registerTools(s, h)

	slog.Info("kbmirror MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

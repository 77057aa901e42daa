// tools.go registers kbmirror's operation surface as MCP tools.
package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/kbmirror/internal/store"
)

func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("addDocument",
			mcp.WithDescription("Add a single static document, not subject to cron re-sync"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Absolute URL of the document")),
			mcp.WithString("metadata", mcp.Description("Opaque JSON metadata to store alongside the document")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.addDocument,
	)

	s.AddTool(
		mcp.NewTool("mirrorSource",
			mcp.WithDescription("Mirror a document set behind a root URL (llms.txt, sitemap, or single page) with version tracking enabled"),
			mcp.WithString("rootUrl", mcp.Required(), mcp.Description("Root URL to discover documents from")),
			mcp.WithString("sourceId", mcp.Description("Explicit source id (default: a new id)")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.mirrorSource,
	)

	s.AddTool(
		mcp.NewTool("listSources",
			mcp.WithDescription("List every configured source"),
		),
		h.listSources,
	)

	s.AddTool(
		mcp.NewTool("listDocuments",
			mcp.WithDescription("List documents in a source's active version, or every source's if sourceId is omitted"),
			mcp.WithString("sourceId", mcp.Description("Limit to this source")),
		),
		h.listDocuments,
	)

	s.AddTool(
		mcp.NewTool("removeDocument",
			mcp.WithDescription("Remove a single document by URL"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Document URL")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.removeDocument,
	)

	s.AddTool(
		mcp.NewTool("removeSource",
			mcp.WithDescription("Remove a source and every document/link that belongs to it"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Source id")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.removeSource,
	)

	s.AddTool(
		mcp.NewTool("refreshSource",
			mcp.WithDescription("Force an immediate reconcile pass for one source"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Source id")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.refreshSource,
	)

	s.AddTool(
		mcp.NewTool("setVersionTracking",
			mcp.WithDescription("Enable or disable cron-driven version tracking for a source"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Source id")),
			mcp.WithBoolean("enabled", mcp.Required(), mcp.Description("Whether version tracking should be enabled")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.setVersionTracking,
	)

	s.AddTool(
		mcp.NewTool("getQuote",
			mcp.WithDescription("Resolve a quote request (natural language, e.g. 'the 3rd paragraph', 'find \"exact phrase\"', 'stats') against a mirrored document"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Document URL")),
			mcp.WithString("request", mcp.Required(), mcp.Description("Quote request text")),
		),
		h.getQuote,
	)

	s.AddTool(
		mcp.NewTool("setSizePolicy",
			mcp.WithDescription("Set the agent's size policy gating auto-ingest and the hard size limit"),
			mcp.WithString("agentId", mcp.Description("Agent id (default: 'default')")),
			mcp.WithBoolean("previewAlways", mcp.Description("Always probe before reconciling")),
			mcp.WithNumber("autoIngestBelowBytes", mcp.Description("Auto-ingest when preview totalBytes is below this")),
			mcp.WithNumber("maxBytesHardLimit", mcp.Description("Hard ceiling; above this reconcile is skipped")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.setSizePolicy,
	)

	s.AddTool(
		mcp.NewTool("setRefreshPolicy",
			mcp.WithDescription("Set the agent's refresh policy controlling preview caching and reconcile cadence"),
			mcp.WithString("agentId", mcp.Description("Agent id (default: 'default')")),
			mcp.WithNumber("previewCacheTtlMs", mcp.Description("How long a cached preview stays valid")),
			mcp.WithNumber("reconcileCooldownMs", mcp.Description("Minimum time between reconciles of the same source")),
			mcp.WithNumber("maxConcurrentReconciles", mcp.Description("Reconcile concurrency cap")),
			mcp.WithNumber("startupReconcileTimeoutMs", mcp.Description("Startup staleness sweep timeout")),
			mcp.WithString("authToken", mcp.Description("Required when auth is enabled")),
		),
		h.setRefreshPolicy,
	)
}

func (h *handlers) addDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	url := getString(req, "url", "")
	if url == "" {
		return mcp.NewToolResultError("url is required"), nil
	}
	var meta []byte
	if m := getString(req, "metadata", ""); m != "" {
		meta = []byte(m)
	}

	id := uuid.NewString()
	if _, err := h.store.CreateStaticSource(ctx, id, url, meta); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outcome, err := h.reconciler.VerifyAndReconcileOne(ctx, id, url)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"sourceId": id, "outcome": outcome})
}

func (h *handlers) mirrorSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	rootURL := getString(req, "rootUrl", "")
	if rootURL == "" {
		return mcp.NewToolResultError("rootUrl is required"), nil
	}
	id := getString(req, "sourceId", "")
	if id == "" {
		id = uuid.NewString()
	}
	outcome, err := h.reconciler.VerifyAndReconcileOne(ctx, id, rootURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"sourceId": id, "outcome": outcome})
}

func (h *handlers) listSources(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := h.store.ListSources(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sources)
}

func (h *handlers) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sourceIDs []string
	if id := getString(req, "sourceId", ""); id != "" {
		sourceIDs = []string{id}
	} else {
		sources, err := h.store.ListSources(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, s := range sources {
			sourceIDs = append(sourceIDs, s.ID)
		}
	}

	var docs []store.Document
	for _, id := range sourceIDs {
		active, err := h.store.GetActive(ctx, id)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		d, err := h.store.ListBySourceVersion(ctx, id, active.VersionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		docs = append(docs, d...)
	}
	return jsonResult(docs)
}

func (h *handlers) removeDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	url := getString(req, "url", "")
	if url == "" {
		return mcp.NewToolResultError("url is required"), nil
	}
	if err := h.store.DeleteByURL(ctx, url); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{"url": url, "status": "removed"})
}

func (h *handlers) removeSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	id := getString(req, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := h.store.DeleteSource(ctx, id, h.sink); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{"sourceId": id, "status": "removed"})
}

func (h *handlers) refreshSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	id := getString(req, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	src, err := h.store.GetSource(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outcome, err := h.reconciler.VerifyAndReconcileOne(ctx, id, src.SourceURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outcome)
}

func (h *handlers) setVersionTracking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	id := getString(req, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	enabled := getBool(req, "enabled", true)
	if err := h.store.SetVersionTracking(ctx, id, enabled); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"sourceId": id, "versionTrackingEnabled": enabled})
}

func (h *handlers) getQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := getString(req, "url", "")
	request := getString(req, "request", "")
	if url == "" || request == "" {
		return mcp.NewToolResultError("url and request are required"), nil
	}
	res, err := h.quotes.Lookup(ctx, url, request, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) setSizePolicy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	agentID := getString(req, "agentId", "default")
	def := store.DefaultSizePolicy(agentID)
	p := store.SizePolicy{
		AgentID:              agentID,
		PreviewAlways:        getBool(req, "previewAlways", def.PreviewAlways),
		AutoIngestBelowBytes: getInt64(req, "autoIngestBelowBytes", def.AutoIngestBelowBytes),
		MaxBytesHardLimit:    getInt64(req, "maxBytesHardLimit", def.MaxBytesHardLimit),
	}
	if err := h.store.SetSizePolicy(ctx, p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (h *handlers) setRefreshPolicy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := h.requireAuth(getString(req, "authToken", "")); r != nil {
		return r, nil
	}
	agentID := getString(req, "agentId", "default")
	def := store.DefaultRefreshPolicy(agentID)
	p := store.RefreshPolicy{
		AgentID:                   agentID,
		PreviewCacheTTLMs:         getInt64(req, "previewCacheTtlMs", def.PreviewCacheTTLMs),
		ReconcileCooldownMs:       getInt64(req, "reconcileCooldownMs", def.ReconcileCooldownMs),
		MaxConcurrentReconciles:   getInt(req, "maxConcurrentReconciles", def.MaxConcurrentReconciles),
		StartupReconcileTimeoutMs: getInt64(req, "startupReconcileTimeoutMs", def.StartupReconcileTimeoutMs),
	}
	if err := h.store.SetRefreshPolicy(ctx, p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

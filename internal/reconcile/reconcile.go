// Package reconcile implements ReconciliationService, the orchestrator
// that drives Discovery -> PreviewProbe -> VersionResolver -> Ingestor
// under the size and refresh policy gates.
package reconcile

import (
	"context"
	"fmt"

	"github.com/jpl-au/kbmirror/internal/clock"
	"github.com/jpl-au/kbmirror/internal/discovery"
	"github.com/jpl-au/kbmirror/internal/httpclient"
	"github.com/jpl-au/kbmirror/internal/ingest"
	"github.com/jpl-au/kbmirror/internal/preview"
	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
	"github.com/jpl-au/kbmirror/internal/versionresolver"
)

// Status is the outcome of one verifyAndReconcileOne call.
type Status string

const (
	StatusUpToDate         Status = "up_to_date"
	StatusReconciled       Status = "reconciled"
	StatusSkippedSizeLimit Status = "skipped_size_limit"
	StatusFailed           Status = "failed"
)

// Outcome reports what happened for one source.
type Outcome struct {
	Status     Status
	VersionID  string
	FileCount  int
	TotalBytes int64
	Error      string
}

// Service orchestrates reconciliation for one agent's sources.
type Service struct {
	store     store.Store
	discovery *discovery.Discoverer
	preview   *preview.Prober
	ingestor  *ingest.Ingestor
	clock     clock.Clock
	agentID   string
}

// New constructs a Service. agentID selects which SizePolicy/RefreshPolicy
// rows to apply (settings are keyed by agent id).
func New(st store.Store, sk sink.KnowledgeSink, client *httpclient.Client, cl clock.Clock, agentID string) *Service {
	return &Service{
		store:     st,
		discovery: discovery.New(client),
		preview:   preview.New(client),
		ingestor:  ingest.New(client, st, sk),
		clock:     cl,
		agentID:   agentID,
	}
}

// VerifyAndReconcileOne runs the full nine-step reconciliation sequence
// for one source, identified by sourceID/sourceURL.
func (s *Service) VerifyAndReconcileOne(ctx context.Context, sourceID, sourceURL string) (Outcome, error) {
	src, err := s.store.UpsertSource(ctx, sourceID, sourceURL)
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: upsert source: %w", err)
	}

	refreshPolicy, err := s.store.GetRefreshPolicy(ctx, s.agentID)
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: refresh policy: %w", err)
	}
	sizePolicy, err := s.store.GetSizePolicy(ctx, s.agentID)
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: size policy: %w", err)
	}

	docs, err := s.discovery.List(ctx, src.SourceURL)
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: discovery: %w", err)
	}

	sp, err := s.loadOrRefreshPreview(ctx, sourceID, docs, refreshPolicy.PreviewCacheTTLMs)
	if err != nil {
		return Outcome{}, fmt.Errorf("reconcile: preview: %w", err)
	}

	activeBefore, err := s.store.GetActive(ctx, sourceID)
	if err != nil && err != store.ErrNotFound {
		return Outcome{}, fmt.Errorf("reconcile: get active: %w", err)
	}

	if out, skip := s.sizeGate(*sizePolicy, sp, activeBefore); skip {
		return out, nil
	}

	remoteVersionID := versionresolver.Resolve(sp)
	localVersionID := ""
	if activeBefore != nil {
		localVersionID = activeBefore.VersionID
	}
	if !versionresolver.NeedsUpdate(localVersionID, remoteVersionID) {
		return Outcome{Status: StatusUpToDate, VersionID: localVersionID}, nil
	}

	if _, err := s.store.CreateStaging(ctx, sourceID, remoteVersionID); err != nil {
		return Outcome{}, fmt.Errorf("reconcile: create staging: %w", err)
	}

	result := s.ingestor.IngestAll(ctx, sourceID, remoteVersionID, docs)
	if len(result.Failures) == len(docs) && len(docs) > 0 {
		reason := "all documents failed to ingest"
		if err := s.store.MarkFailed(ctx, sourceID, remoteVersionID, reason); err != nil {
			return Outcome{}, fmt.Errorf("reconcile: mark failed: %w", err)
		}
		return Outcome{Status: StatusFailed, VersionID: remoteVersionID, Error: reason}, nil
	}

	if err := s.store.Activate(ctx, sourceID, remoteVersionID); err != nil {
		return Outcome{}, fmt.Errorf("reconcile: activate: %w", err)
	}

	now := s.clock.Now()
	if err := s.store.UpdateSyncTimes(ctx, sourceID, now, now); err != nil {
		return Outcome{}, fmt.Errorf("reconcile: update sync times: %w", err)
	}

	return Outcome{
		Status:     StatusReconciled,
		VersionID:  remoteVersionID,
		FileCount:  result.DocumentsIngested,
		TotalBytes: sp.TotalBytes,
	}, nil
}

func (s *Service) loadOrRefreshPreview(ctx context.Context, sourceID string, docs []discovery.DocURL, ttlMs int64) (store.SourcePreview, error) {
	cached, err := s.store.GetPreviewCache(ctx, sourceID)
	if err == nil {
		age := s.clock.Now().Sub(cached.CheckedAt).Milliseconds()
		if age <= ttlMs {
			return cached.Preview, nil
		}
	} else if err != store.ErrNotFound {
		return store.SourcePreview{}, err
	}

	sp := s.preview.Probe(ctx, sourceID, docs)
	if putErr := s.store.PutPreviewCache(ctx, store.PreviewCache{SourceID: sourceID, Preview: sp, CheckedAt: s.clock.Now()}); putErr != nil {
		return store.SourcePreview{}, putErr
	}
	return sp, nil
}

// sizeGate enforces the size policy's hard limit. Returns (outcome, true) if
// reconciliation must stop here.
func (s *Service) sizeGate(policy store.SizePolicy, sp store.SourcePreview, activeBefore *store.Version) (Outcome, bool) {
	if sp.TotalBytes > policy.MaxBytesHardLimit {
		return Outcome{Status: StatusSkippedSizeLimit, Error: "exceeds hard limit", TotalBytes: sp.TotalBytes}, true
	}
	if sp.TotalBytes > policy.AutoIngestBelowBytes && activeBefore == nil {
		return Outcome{Status: StatusSkippedSizeLimit, Error: "requires confirmation to initialize", TotalBytes: sp.TotalBytes}, true
	}
	return Outcome{}, false
}

// VerifyAndReconcileAll sequences enabled sources. Concurrency across calls
// is bounded by the caller (the scheduler), not here.
func (s *Service) VerifyAndReconcileAll(ctx context.Context, sources []store.Source) map[string]Outcome {
	results := make(map[string]Outcome, len(sources))
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		out, err := s.VerifyAndReconcileOne(ctx, src.ID, src.SourceURL)
		if err != nil {
			out = Outcome{Status: StatusFailed, Error: err.Error()}
		}
		results[src.ID] = out
	}
	return results
}

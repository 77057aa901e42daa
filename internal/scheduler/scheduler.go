// Package scheduler implements ScheduledSyncService: cron-driven plus
// startup-staleness-driven invocation of the reconciliation service, with
// SyncLog bookkeeping and post-sync garbage collection.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jpl-au/kbmirror/internal/clock"
	"github.com/jpl-au/kbmirror/internal/log"
	"github.com/jpl-au/kbmirror/internal/reconcile"
	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
)

// Config configures a Service, matching the process's env-var surface.
type Config struct {
	CronExpr        string        // SYNC_CRON, default "0 3 * * *"
	Timezone        string        // SYNC_TIMEZONE, default "UTC"
	StalenessAfter  time.Duration // STALENESS_HOURS, default 24h
	Enabled         bool          // SYNC_ENABLED, default true
	StartupTimeout  time.Duration // startupReconcileTimeoutMs from RefreshPolicy
}

// DefaultConfig returns the package's default scheduling configuration.
func DefaultConfig() Config {
	return Config{
		CronExpr:       "0 3 * * *",
		Timezone:       "UTC",
		StalenessAfter: 24 * time.Hour,
		Enabled:        true,
		StartupTimeout: 60 * time.Second,
	}
}

// Service runs the orchestrator on a schedule plus a one-time startup
// staleness sweep.
type Service struct {
	store      store.Store
	sink       sink.KnowledgeSink
	reconciler *reconcile.Service
	clock      clock.Clock
	cfg        Config
	cron       *cron.Cron
}

// New constructs a Service. reconciler is the already-wired
// reconcile.Service (sources, sink, http client, clock all bound there). sk
// is the same sink bound into reconciler, used directly for the GC step's
// sink-handle cleanup.
func New(st store.Store, sk sink.KnowledgeSink, reconciler *reconcile.Service, cl clock.Clock, cfg Config) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid timezone %q: %w", cfg.Timezone, err)
	}
	return &Service{
		store:      st,
		sink:       sk,
		reconciler: reconciler,
		clock:      cl,
		cfg:        cfg,
		cron:       cron.New(cron.WithLocation(loc)),
	}, nil
}

// Start runs the startup staleness sweep once, then starts the cron
// schedule. The returned stop function should be deferred by the caller.
func (s *Service) Start(ctx context.Context) (stop func(), err error) {
	if !s.cfg.Enabled {
		return func() {}, nil
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	s.runStalenessSweep(sweepCtx)
	cancel()

	if _, err := s.cron.AddFunc(s.cfg.CronExpr, func() { s.RunAll(ctx) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron expr %q: %w", s.cfg.CronExpr, err)
	}
	s.cron.Start()

	return func() { <-s.cron.Stop().Done() }, nil
}

// runStalenessSweep reconciles every enabled source whose last sync is
// unknown or older than StalenessAfter. A source qualifies when it tracks
// versions, isn't static content, and its lastSyncAt is unset or stale.
func (s *Service) runStalenessSweep(ctx context.Context) {
	sources, err := s.store.ListEnabledSources(ctx)
	if err != nil {
		return
	}

	var stale []store.Source
	now := s.clock.Now()
	for _, src := range sources {
		if !src.VersionTrackingEnabled || src.IsStaticContent {
			continue
		}
		if src.LastSyncAt == nil || now.Sub(*src.LastSyncAt) > s.cfg.StalenessAfter {
			stale = append(stale, src)
		}
	}
	if len(stale) == 0 {
		return
	}

	s.runSyncLog(ctx, stale)
}

// RunAll is the cron-triggered entry point: reconcile every enabled source.
func (s *Service) RunAll(ctx context.Context) {
	sources, err := s.store.ListEnabledSources(ctx)
	if err != nil {
		return
	}
	s.runSyncLog(ctx, sources)
}

func (s *Service) runSyncLog(ctx context.Context, sources []store.Source) {
	logID, err := s.store.StartSyncLog(ctx)
	if err != nil {
		return
	}

	var checked, updated, skipped int
	var errMsgs []string

	for _, src := range sources {
		checked++
		out, err := s.reconciler.VerifyAndReconcileOne(ctx, src.ID, src.SourceURL)
		l := log.Event("sync:run", "reconcile").Source(src.ID)
		l.Write(err)

		switch {
		case err != nil:
			errMsgs = append(errMsgs, fmt.Sprintf("%s: %v", src.ID, err))
		case out.Status == reconcile.StatusReconciled:
			updated++
		case out.Status == reconcile.StatusUpToDate:
			skipped++
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("%s: %s (%s)", src.ID, out.Status, out.Error))
		}

		if _, gcErr := s.store.DeleteArchivedBySource(ctx, src.ID, s.sink); gcErr != nil {
			errMsgs = append(errMsgs, fmt.Sprintf("%s: gc: %v", src.ID, gcErr))
		}
	}

	status := "completed"
	if len(errMsgs) > 0 {
		status = "failed"
	}
	s.store.FinishSyncLog(ctx, logID, status, checked, updated, skipped, errMsgs)
}

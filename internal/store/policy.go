// policy.go implements the per-agent SizePolicy/RefreshPolicy repository.
//
// Design: Get* falls back to package defaults rather than ErrNotFound - the
// orchestrator defaults policies when absent rather than failing.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *SQLiteStore) GetSizePolicy(ctx context.Context, agentID string) (*SizePolicy, error) {
	var p SizePolicy
	p.AgentID = agentID
	row := s.db.QueryRowContext(ctx, `
		SELECT preview_always, auto_ingest_below_bytes, max_bytes_hard_limit
		FROM size_policies WHERE agent_id = ?
	`, agentID)
	err := row.Scan(&p.PreviewAlways, &p.AutoIngestBelowBytes, &p.MaxBytesHardLimit)
	if errors.Is(err, sql.ErrNoRows) {
		d := DefaultSizePolicy(agentID)
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get size policy for %s: %w", agentID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) SetSizePolicy(ctx context.Context, p SizePolicy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO size_policies (agent_id, preview_always, auto_ingest_below_bytes, max_bytes_hard_limit)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET
			preview_always = excluded.preview_always,
			auto_ingest_below_bytes = excluded.auto_ingest_below_bytes,
			max_bytes_hard_limit = excluded.max_bytes_hard_limit
	`, p.AgentID, p.PreviewAlways, p.AutoIngestBelowBytes, p.MaxBytesHardLimit)
	if err != nil {
		return fmt.Errorf("set size policy for %s: %w", p.AgentID, err)
	}
	return nil
}

func (s *SQLiteStore) GetRefreshPolicy(ctx context.Context, agentID string) (*RefreshPolicy, error) {
	var p RefreshPolicy
	p.AgentID = agentID
	row := s.db.QueryRowContext(ctx, `
		SELECT preview_cache_ttl_ms, reconcile_cooldown_ms, max_concurrent_reconciles, startup_reconcile_timeout_ms
		FROM refresh_policies WHERE agent_id = ?
	`, agentID)
	err := row.Scan(&p.PreviewCacheTTLMs, &p.ReconcileCooldownMs, &p.MaxConcurrentReconciles, &p.StartupReconcileTimeoutMs)
	if errors.Is(err, sql.ErrNoRows) {
		d := DefaultRefreshPolicy(agentID)
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh policy for %s: %w", agentID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) SetRefreshPolicy(ctx context.Context, p RefreshPolicy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_policies (agent_id, preview_cache_ttl_ms, reconcile_cooldown_ms, max_concurrent_reconciles, startup_reconcile_timeout_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET
			preview_cache_ttl_ms = excluded.preview_cache_ttl_ms,
			reconcile_cooldown_ms = excluded.reconcile_cooldown_ms,
			max_concurrent_reconciles = excluded.max_concurrent_reconciles,
			startup_reconcile_timeout_ms = excluded.startup_reconcile_timeout_ms
	`, p.AgentID, p.PreviewCacheTTLMs, p.ReconcileCooldownMs, p.MaxConcurrentReconciles, p.StartupReconcileTimeoutMs)
	if err != nil {
		return fmt.Errorf("set refresh policy for %s: %w", p.AgentID, err)
	}
	return nil
}

/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// policy.go implements setSizePolicy and setRefreshPolicy: per-agent knobs
// that gate reconciliation.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/store"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "View and set size/refresh policy for the current agent",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current size and refresh policy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sp, err := a.store.GetSizePolicy(cmd.Context(), agentID)
		if err != nil {
			return PrintJSONError(err)
		}
		rp, err := a.store.GetRefreshPolicy(cmd.Context(), agentID)
		if err != nil {
			return PrintJSONError(err)
		}

		if JSON() {
			return PrintJSON(map[string]any{"sizePolicy": sp, "refreshPolicy": rp})
		}
		fmt.Fprintf(Out(), "size:    previewAlways=%v autoIngestBelowBytes=%d maxBytesHardLimit=%d\n",
			sp.PreviewAlways, sp.AutoIngestBelowBytes, sp.MaxBytesHardLimit)
		fmt.Fprintf(Out(), "refresh: previewCacheTtlMs=%d reconcileCooldownMs=%d maxConcurrentReconciles=%d startupReconcileTimeoutMs=%d\n",
			rp.PreviewCacheTTLMs, rp.ReconcileCooldownMs, rp.MaxConcurrentReconciles, rp.StartupReconcileTimeoutMs)
		return nil
	},
}

var (
	sizePreviewAlways bool
	sizeAutoBelow     int64
	sizeHardLimit     int64
)

var policySetSizeCmd = &cobra.Command{
	Use:   "set-size",
	Short: "Set the size policy (setSizePolicy)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p := store.SizePolicy{
			AgentID:              agentID,
			PreviewAlways:        sizePreviewAlways,
			AutoIngestBelowBytes: sizeAutoBelow,
			MaxBytesHardLimit:    sizeHardLimit,
		}
		if err := a.store.SetSizePolicy(cmd.Context(), p); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(p)
		}
		fmt.Fprintln(Out(), "size policy updated")
		return nil
	},
}

var (
	refreshPreviewTTL     int64
	refreshCooldown       int64
	refreshMaxConcurrent  int
	refreshStartupTimeout int64
)

var policySetRefreshCmd = &cobra.Command{
	Use:   "set-refresh",
	Short: "Set the refresh policy (setRefreshPolicy)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p := store.RefreshPolicy{
			AgentID:                   agentID,
			PreviewCacheTTLMs:         refreshPreviewTTL,
			ReconcileCooldownMs:       refreshCooldown,
			MaxConcurrentReconciles:   refreshMaxConcurrent,
			StartupReconcileTimeoutMs: refreshStartupTimeout,
		}
		if err := a.store.SetRefreshPolicy(cmd.Context(), p); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(p)
		}
		fmt.Fprintln(Out(), "refresh policy updated")
		return nil
	},
}

func init() {
	def := store.DefaultSizePolicy("")
	policySetSizeCmd.Flags().BoolVar(&sizePreviewAlways, "preview-always", def.PreviewAlways, "Always probe before reconciling")
	policySetSizeCmd.Flags().Int64Var(&sizeAutoBelow, "auto-ingest-below-bytes", def.AutoIngestBelowBytes, "Auto-ingest when preview totalBytes is below this")
	policySetSizeCmd.Flags().Int64Var(&sizeHardLimit, "max-bytes-hard-limit", def.MaxBytesHardLimit, "Hard ceiling; above this reconcile is skipped")

	defR := store.DefaultRefreshPolicy("")
	policySetRefreshCmd.Flags().Int64Var(&refreshPreviewTTL, "preview-cache-ttl-ms", defR.PreviewCacheTTLMs, "How long a cached preview stays valid")
	policySetRefreshCmd.Flags().Int64Var(&refreshCooldown, "reconcile-cooldown-ms", defR.ReconcileCooldownMs, "Minimum time between reconciles of the same source")
	policySetRefreshCmd.Flags().IntVar(&refreshMaxConcurrent, "max-concurrent-reconciles", defR.MaxConcurrentReconciles, "Reconcile concurrency cap")
	policySetRefreshCmd.Flags().Int64Var(&refreshStartupTimeout, "startup-reconcile-timeout-ms", defR.StartupReconcileTimeoutMs, "Startup staleness sweep timeout")

	policyCmd.AddCommand(policyShowCmd, policySetSizeCmd, policySetRefreshCmd)
	rootCmd.AddCommand(policyCmd)
}

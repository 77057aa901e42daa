/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// sync.go implements the ScheduledSyncService's CLI surface: a one-shot
// "run" for operators who want an immediate pass, and "serve" which starts
// the cron loop and blocks.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/clock"
	"github.com/jpl-au/kbmirror/internal/log"
	"github.com/jpl-au/kbmirror/internal/progress"
	"github.com/jpl-au/kbmirror/internal/scheduler"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run or schedule reconciliation across every enabled source",
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile every enabled source once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sources, err := a.store.ListEnabledSources(cmd.Context())
		if err != nil {
			return PrintJSONError(err)
		}

		spin := progress.NewSpinner(fmt.Sprintf("Reconciling %d source(s)", len(sources)))
		spin.Start()
		outcomes := a.reconciler.VerifyAndReconcileAll(cmd.Context(), sources)
		spin.Stop()

		for id, o := range outcomes {
			var oErr error
			if o.Error != "" {
				oErr = errors.New(o.Error)
			}
			log.Event("cli:sync_run", "reconcile").Source(id).Write(oErr)
		}

		if JSON() {
			return PrintJSON(outcomes)
		}
		for id, o := range outcomes {
			fmt.Fprintf(Out(), "%s: %s\n", id, o.Status)
		}
		return nil
	},
}

var syncServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cron-driven sync loop and block until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.SyncEnabled {
			fmt.Fprintln(Out(), "SYNC_ENABLED=false; nothing to do")
			return nil
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		schedCfg := scheduler.DefaultConfig()
		schedCfg.CronExpr = cfg.SyncCron
		schedCfg.Timezone = cfg.SyncTimezone
		schedCfg.StalenessAfter = time.Duration(cfg.StalenessHours) * time.Hour

		rp, err := a.store.GetRefreshPolicy(cmd.Context(), agentID)
		if err != nil {
			return fmt.Errorf("load refresh policy: %w", err)
		}
		schedCfg.StartupTimeout = time.Duration(rp.StartupReconcileTimeoutMs) * time.Millisecond

		svc, err := scheduler.New(a.store, a.sink, a.reconciler, clock.Real{}, schedCfg)
		if err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}

		stop, err := svc.Start(cmd.Context())
		if err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer stop()

		fmt.Fprintf(Out(), "sync loop running (%s %s), ctrl-c to stop\n", cfg.SyncCron, cfg.SyncTimezone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncRunCmd, syncServeCmd)
	rootCmd.AddCommand(syncCmd)
}

/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines global CLI flags, output helpers, and the app bootstrap
// shared by every subcommand.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/kbmirror/internal/clock"
	"github.com/jpl-au/kbmirror/internal/config"
	"github.com/jpl-au/kbmirror/internal/httpclient"
	"github.com/jpl-au/kbmirror/internal/log"
	"github.com/jpl-au/kbmirror/internal/quote"
	"github.com/jpl-au/kbmirror/internal/reconcile"
	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
)

var (
	output     string
	dbPath     string
	agentID    string
	configFile string
)

// loadConfig resolves runtime configuration, seeding the environment from
// --config first when set.
func loadConfig() (*config.Config, error) {
	return config.LoadWithFile(configFile)
}

// out is the output writer for commands. Defaults to os.Stdout.
var out io.Writer = os.Stdout

// Out returns the output writer.
func Out() io.Writer { return out }

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON, otherwise
// returns it unchanged for cobra to render.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return nil
}

// resolvedDBPath returns the sqlite file to use: --db flag, KBMIRROR_DB env
// var, or the package default.
func resolvedDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if v := os.Getenv("KBMIRROR_DB"); v != "" {
		return v
	}
	return "kbmirror.db"
}

// app bundles the services every subcommand wires against. Each subcommand's
// RunE constructs one via newApp; nothing here is extension-registered
// the way the document-CRUD predecessor was, since the operation surface is
// fixed by the operation surface rather than plugin-declared.
type app struct {
	store      *store.SQLiteStore
	sink       sink.KnowledgeSink
	reconciler *reconcile.Service
	quotes     *quote.Engine
}

func newApp() (*app, error) {
	st, err := store.Open(resolvedDBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}

	log.SetProject(resolvedDBPath())

	client := httpclient.New()
	sk := sink.NewInMemorySink()
	reconciler := reconcile.New(st, sk, client, clock.Real{}, agentID)
	quotes := quote.New(st)

	return &app{store: st, sink: sk, reconciler: reconciler, quotes: quotes}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the sqlite database file")
	rootCmd.PersistentFlags().StringVar(&agentID, "agent", "default", "Agent id for size/refresh policy lookups")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional YAML file of environment-variable defaults")
}

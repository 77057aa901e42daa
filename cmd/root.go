/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Separated from flags.go (which holds the app wiring) to isolate cobra
// setup from application wiring.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "kbmirror",
	Short: "Knowledge-base mirror: discover, version, and quote remote document sets",
	Long: `kbmirror discovers documents behind a root URL (llms.txt, sitemap, or a single
page), tracks them through a staging -> active -> archived version lifecycle,
ingests verbatim content plus a structural profile, and serves quote lookups
against that profile in constant time.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command and handles process lifecycle.
func Execute() {
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer log.Close()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}

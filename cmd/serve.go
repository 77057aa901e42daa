/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// serve.go starts the MCP server, exposing the operation surface to LLM
// clients over stdio.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return mcp.Serve(a.store, a.sink, a.reconciler, a.quotes, cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

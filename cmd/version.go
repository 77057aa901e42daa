/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if JSON() {
			return PrintJSON(info)
		}
		fmt.Fprint(Out(), info.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// document.go implements listDocuments and removeDocument: the two
// document-level operations in the operation surface that don't belong
// under "source" (which manages the upstream, not individual URLs).
package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/store"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect and remove individual documents",
}

var documentListCmd = &cobra.Command{
	Use:   "list [sourceId]",
	Short: "List documents in each source's active version (listDocuments)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var sourceIDs []string
		if len(args) == 1 {
			sourceIDs = []string{args[0]}
		} else {
			sources, err := a.store.ListSources(cmd.Context())
			if err != nil {
				return PrintJSONError(err)
			}
			for _, s := range sources {
				sourceIDs = append(sourceIDs, s.ID)
			}
		}

		docs, err := listActiveDocuments(cmd.Context(), a.store, sourceIDs)
		if err != nil {
			return PrintJSONError(err)
		}

		if JSON() {
			return PrintJSON(docs)
		}
		for _, d := range docs {
			fmt.Fprintf(Out(), "%-12s  %8s  %s\n", d.SourceID, humanize.Bytes(uint64(d.ByteSize)), d.URL)
		}
		return nil
	},
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a single document by URL (removeDocument)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.DeleteByURL(cmd.Context(), url); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"url": url, "status": "removed"})
		}
		fmt.Fprintf(Out(), "removed %s\n", url)
		return nil
	},
}

// listActiveDocuments resolves each source's active Version, then its
// Documents. A source with no active version (never reconciled, or every
// version failed) is skipped rather than erroring the whole listing.
func listActiveDocuments(ctx context.Context, st store.Store, sourceIDs []string) ([]store.Document, error) {
	var out []store.Document
	for _, id := range sourceIDs {
		active, err := st.GetActive(ctx, id)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get active version for %s: %w", id, err)
		}
		docs, err := st.ListBySourceVersion(ctx, id, active.VersionID)
		if err != nil {
			return nil, fmt.Errorf("list documents for %s: %w", id, err)
		}
		out = append(out, docs...)
	}
	return out, nil
}

func init() {
	documentCmd.AddCommand(documentListCmd, documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

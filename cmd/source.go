/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// source.go implements the source management commands: add, mirror, list,
// remove, refresh, the per-source tracking toggle, and history. These map
// directly onto the operation surface's addDocument/mirrorSource/
// listSources/removeSource/refreshSource/setVersionTracking operations.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/log"
	"github.com/jpl-au/kbmirror/internal/store"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage mirrored sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a single static document, ignored by scheduled re-sync (addDocument)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var meta []byte
		if sourceMetaFlag != "" {
			if !json.Valid([]byte(sourceMetaFlag)) {
				return fmt.Errorf("--metadata must be valid JSON")
			}
			meta = []byte(sourceMetaFlag)
		}

		id := uuid.NewString()
		if _, err := a.store.CreateStaticSource(cmd.Context(), id, url, meta); err != nil {
			return PrintJSONError(fmt.Errorf("create source: %w", err))
		}

		outcome, err := a.reconciler.VerifyAndReconcileOne(cmd.Context(), id, url)
		log.Event("cli:source_add", "reconcile").Source(id).Write(err)
		if err != nil {
			return PrintJSONError(err)
		}

		if JSON() {
			return PrintJSON(map[string]any{"sourceId": id, "outcome": outcome})
		}
		fmt.Fprintf(Out(), "added %s as %s (%s, %s)\n", url, id, outcome.Status, humanize.Bytes(uint64(outcome.TotalBytes)))
		return nil
	},
}

var sourceMirrorCmd = &cobra.Command{
	Use:   "mirror <rootUrl>",
	Short: "Mirror a source with version tracking enabled (mirrorSource)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootURL := args[0]
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id := sourceIDFlag
		if id == "" {
			id = uuid.NewString()
		}

		outcome, err := a.reconciler.VerifyAndReconcileOne(cmd.Context(), id, rootURL)
		log.Event("cli:source_mirror", "reconcile").Source(id).Write(err)
		if err != nil {
			return PrintJSONError(err)
		}

		if JSON() {
			return PrintJSON(map[string]any{"sourceId": id, "outcome": outcome})
		}
		fmt.Fprintf(Out(), "mirrored %s as %s: %s (%d files, %s)\n",
			rootURL, id, outcome.Status, outcome.FileCount, humanize.Bytes(uint64(outcome.TotalBytes)))
		return nil
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources (listSources)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sources, err := a.store.ListSources(cmd.Context())
		if err != nil {
			return PrintJSONError(err)
		}

		if JSON() {
			return PrintJSON(sources)
		}
		for _, s := range sources {
			tracking := "tracked"
			if !s.VersionTrackingEnabled {
				tracking = "static"
			}
			fmt.Fprintf(Out(), "%s  %-10s  %s\n", s.ID, tracking, s.SourceURL)
		}
		return nil
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <sourceId>",
	Short: "Remove a source and its documents/links (removeSource)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.store.DeleteSource(cmd.Context(), id, a.sink)
		log.Event("cli:source_remove", "store").Source(id).Write(err)
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"sourceId": id, "status": "removed"})
		}
		fmt.Fprintf(Out(), "removed %s\n", id)
		return nil
	},
}

var sourceRefreshCmd = &cobra.Command{
	Use:   "refresh <sourceId>",
	Short: "Force an immediate reconcile pass for one source (refreshSource)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		src, err := a.store.GetSource(cmd.Context(), id)
		if err != nil {
			return PrintJSONError(fmt.Errorf("get source: %w", err))
		}

		outcome, err := a.reconciler.VerifyAndReconcileOne(cmd.Context(), id, src.SourceURL)
		log.Event("cli:source_refresh", "reconcile").Source(id).Write(err)
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(outcome)
		}
		fmt.Fprintf(Out(), "refreshed %s: %s\n", id, outcome.Status)
		return nil
	},
}

var sourceTrackCmd = &cobra.Command{
	Use:   "track <sourceId> <true|false>",
	Short: "Enable or disable version tracking for a source (setVersionTracking)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		enabled := args[1] == "true"
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.store.SetVersionTracking(cmd.Context(), id, enabled)
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]any{"sourceId": id, "versionTrackingEnabled": enabled})
		}
		fmt.Fprintf(Out(), "%s: version tracking %v\n", id, enabled)
		return nil
	},
}

var sourceHistoryCmd = &cobra.Command{
	Use:   "history <sourceId>",
	Short: "List a source's staging/active/archived versions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		versions, err := a.store.ListVersions(cmd.Context(), id)
		if err != nil {
			return PrintJSONError(err)
		}

		if sourceHistoryDiffFlag {
			diff, err := manifestDiff(cmd.Context(), a.store, id, versions)
			if err != nil {
				return PrintJSONError(err)
			}
			if JSON() {
				return PrintJSON(map[string]any{"sourceId": id, "diff": diff})
			}
			fmt.Fprintln(Out(), diff)
			return nil
		}

		if JSON() {
			return PrintJSON(versions)
		}
		for _, v := range versions {
			fmt.Fprintf(Out(), "%s  %-10s  created %s\n", v.VersionID, v.Status, v.CreatedAt.Format("2006-01-02T15:04:05Z"))
		}
		return nil
	},
}

// manifestDiff renders a line-level diff between the two most recent
// versions' file manifests (URL and byte size per document), presentation
// only - it never touches the stored Document rows (no sub-file diffing).
func manifestDiff(ctx context.Context, st store.Store, sourceID string, versions []store.Version) (string, error) {
	if len(versions) < 2 {
		return "", fmt.Errorf("source %s has fewer than two versions to compare", sourceID)
	}
	older, newer := versions[1], versions[0]

	olderManifest, err := manifestText(ctx, st, sourceID, older.VersionID)
	if err != nil {
		return "", err
	}
	newerManifest, err := manifestText(ctx, st, sourceID, newer.VersionID)
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(olderManifest, newerManifest, false)
	return dmp.DiffPrettyText(diffs), nil
}

func manifestText(ctx context.Context, st store.Store, sourceID, versionID string) (string, error) {
	docs, err := st.ListBySourceVersion(ctx, sourceID, versionID)
	if err != nil {
		return "", err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].URL < docs[j].URL })

	var lines []string
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("%s  %d bytes", d.URL, d.ByteSize))
	}
	return strings.Join(lines, "\n"), nil
}

var sourceMetaFlag string
var sourceIDFlag string
var sourceHistoryDiffFlag bool

func init() {
	sourceAddCmd.Flags().StringVar(&sourceMetaFlag, "metadata", "", "Opaque JSON metadata to store with the document")
	sourceMirrorCmd.Flags().StringVar(&sourceIDFlag, "id", "", "Explicit source id (default: a new uuid)")
	sourceHistoryCmd.Flags().BoolVar(&sourceHistoryDiffFlag, "diff", false, "Diff the manifests of the two most recent versions")

	sourceCmd.AddCommand(sourceAddCmd, sourceMirrorCmd, sourceListCmd, sourceRemoveCmd, sourceRefreshCmd, sourceTrackCmd, sourceHistoryCmd)
	rootCmd.AddCommand(sourceCmd)
}

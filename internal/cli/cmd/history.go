package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/berrythewa/longan/internal/storage"
	"github.com/berrythewa/longan/pkg/format"
)

// historyView is the JSON shape of a history record.
type historyView struct {
	Hash        string `json:"hash"`
	pasteView
	Occurrences int `json:"occurrences"`
}

// newHistoryCmd creates the history command
func newHistoryCmd() *cobra.Command {
	var (
		limit    int
		compact  bool
		maxLines int
		maxWidth int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List clipboard history",
		Long: `List recorded clipboard history entries, newest first.

Clips are recorded by 'longan clip copy --record' and 'longan clip watch --record'.

Examples:
  longan clip history                 # Show last 10 entries
  longan clip history -n 20           # Show last 20 entries
  longan clip history --compact       # Compact single-line format
  longan clip history --json          # Machine-readable output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer store.Close()

			records, err := store.List(limit)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}
			out := cmd.OutOrStdout()

			if useJSON {
				views := make([]historyView, 0, len(records))
				for _, rec := range records {
					views = append(views, historyView{
						Hash:        rec.Hash,
						pasteView:   newPasteView(rec.Item()),
						Occurrences: occurrences(rec),
					})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			opts := formatOptions(compact)
			if maxLines >= 0 {
				opts.MaxLines = maxLines
			}
			if maxWidth >= 0 {
				opts.MaxWidth = maxWidth
			}

			entries := make([]format.Entry, 0, len(records))
			for _, rec := range records {
				entries = append(entries, format.Entry{Item: rec.Item(), Occurrences: occurrences(rec)})
			}
			fmt.Fprintln(out, format.New(opts).FormatEntryList(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries to show (0 for all)")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "use compact single-line format")
	cmd.Flags().IntVar(&maxLines, "max-lines", -1, "maximum lines to show per entry (0 = no limit)")
	cmd.Flags().IntVar(&maxWidth, "max-width", -1, "maximum width per line (0 = no limit)")

	return cmd
}

func occurrences(rec *storage.Record) int {
	if n := len(rec.Occurrences); n > 0 {
		return n
	}
	return 1
}

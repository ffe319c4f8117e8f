package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newFlushCmd creates the flush command
func newFlushCmd() *cobra.Command {
	var (
		keep  int
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Flush the clipboard history",
		Long: `Delete old clips from the history to free up space.
This keeps the most recently seen clips, by default as many as the
history.keep_items setting allows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("Flushing clipboard history", zap.Int("keep", keep))

			store, err := openStorage()
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer store.Close()

			removed, err := store.Flush(keep)
			if err != nil {
				return err
			}
			left, err := store.Count()
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d clips, %d left\n", removed, left)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&keep, "keep", "k", -1, "number of recent clips to keep (-1 for the configured default)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing on success")
	return cmd
}

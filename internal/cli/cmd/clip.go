package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/longan/internal/storage"
	"github.com/berrythewa/longan/pkg/clipboard"
	"github.com/berrythewa/longan/pkg/format"
)

// newClipCmd creates the clip command
func newClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip",
		Short: "Clipboard operations",
		Long: `Perform clipboard operations:
  • Copy text, URIs or intents to the clipboard
  • Paste the current clipboard content
  • Watch for clipboard changes
  • Browse and flush the local clip history`,
	}

	cmd.AddCommand(newClipCopyCmd())
	cmd.AddCommand(newClipPasteCmd())
	cmd.AddCommand(newClipClearCmd())
	cmd.AddCommand(newClipWatchCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newFlushCmd())

	return cmd
}

func newClipCopyCmd() *cobra.Command {
	var (
		label        string
		asURI        bool
		intentAction string
		intentData   string
		intentType   string
		intentPkg    string
		categories   []string
		extras       map[string]string
		record       bool
	)

	cmd := &cobra.Command{
		Use:   "copy [text...]",
		Short: "Copy content to the clipboard",
		Long: `Copy text, a URI or an intent to the clipboard.

Without arguments the text is read from stdin.

Examples:
  longan clip copy hello world
  longan clip copy --uri https://example.com
  echo hi | longan clip copy --label greeting
  longan clip copy --intent-action view --intent-data geo:0,0 --extra zoom=3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var item *clipboard.Item

			if intentAction != "" || intentData != "" {
				intent := &clipboard.Intent{
					Action:     intentAction,
					Data:       intentData,
					Type:       intentType,
					Package:    intentPkg,
					Categories: categories,
					Extras:     extras,
				}
				item = clipboard.NewIntentItem(intent, label)
			} else {
				text, err := readContent(cmd, args)
				if err != nil {
					return err
				}
				if asURI {
					u, err := url.Parse(strings.TrimSpace(text))
					if err != nil {
						return fmt.Errorf("invalid URI: %w", err)
					}
					item = clipboard.NewURIItem(u, label)
				} else {
					item = clipboard.NewTextItem(text, label)
				}
			}

			mgr := newManager()
			defer mgr.Close()
			if err := mgr.SetPrimaryClip(item); err != nil {
				return fmt.Errorf("failed to copy: %w", err)
			}

			if record {
				if err := recordItem(item); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Copied %s to clipboard\n", item.Type)
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "user-visible label for the clip")
	cmd.Flags().BoolVarP(&asURI, "uri", "u", false, "copy the content as a URI")
	cmd.Flags().StringVar(&intentAction, "intent-action", "", "copy an intent with this action")
	cmd.Flags().StringVar(&intentData, "intent-data", "", "data URI of the intent")
	cmd.Flags().StringVar(&intentType, "intent-type", "", "MIME type of the intent")
	cmd.Flags().StringVar(&intentPkg, "intent-package", "", "package the intent targets")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "intent category (repeatable)")
	cmd.Flags().StringToStringVar(&extras, "extra", nil, "intent extra as key=value (repeatable)")
	cmd.Flags().BoolVar(&record, "record", false, "also save the clip to the history")
	return cmd
}

func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// pasteView is the JSON shape of a clip.
type pasteView struct {
	Type    clipboard.ContentType `json:"type"`
	Label   string                `json:"label,omitempty"`
	Text    string                `json:"text"`
	Intent  *clipboard.Intent     `json:"intent,omitempty"`
	Created time.Time             `json:"created"`
}

func newPasteView(item *clipboard.Item) pasteView {
	return pasteView{
		Type:    item.Type,
		Label:   item.Label,
		Text:    item.CoerceToText(),
		Intent:  item.Intent,
		Created: item.Created,
	}
}

func newClipPasteCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print the current clipboard content",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newManager()
			defer mgr.Close()

			item, err := mgr.PrimaryClip()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case useJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if item == nil {
					return enc.Encode(nil)
				}
				return enc.Encode(newPasteView(item))
			case raw:
				if item != nil {
					_, err = io.WriteString(out, item.CoerceToText())
				}
				return err
			default:
				opts := formatOptions(false)
				opts.ShowMetadata = false
				fmt.Fprintln(out, format.New(opts).FormatItem(item))
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "output raw content without metadata")
	return cmd
}

func newClipClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newManager()
			defer mgr.Close()

			if err := mgr.Clear(); err != nil {
				return fmt.Errorf("failed to clear clipboard: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Clipboard cleared")
			return nil
		},
	}
}

func newClipWatchCmd() *cobra.Command {
	var (
		timeout time.Duration
		count   int
		record  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch clipboard changes",
		Long: `Print every clipboard change until interrupted.

Examples:
  longan clip watch                 # Watch until Ctrl+C
  longan clip watch --record        # Also save each change to the history
  longan clip watch -t 1m -n 5      # Stop after a minute or five changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			var store *storage.BoltStorage
			if record {
				var err error
				if store, err = openStorage(); err != nil {
					return fmt.Errorf("failed to open history: %w", err)
				}
				defer store.Close()
			}

			changes := make(chan *clipboard.Item, 16)
			mgr := newManager()
			defer mgr.Close()
			sub := mgr.OnChanged(func(item *clipboard.Item) {
				select {
				case changes <- item:
				default:
					logger.Warn("Dropping clipboard change, output is behind")
				}
			})
			defer sub.Cancel()

			logger.Info("Watching clipboard", zap.Duration("interval", cfg.Clipboard.PollInterval))
			formatter := format.New(formatOptions(true))
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)

			seen := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case item := <-changes:
					if item == nil {
						fmt.Fprintln(out, "Clipboard cleared")
					} else if useJSON {
						if err := enc.Encode(newPasteView(item)); err != nil {
							return err
						}
					} else {
						fmt.Fprintln(out, formatter.FormatItem(item))
					}

					if store != nil && item != nil {
						if _, err := store.Save(item); err != nil {
							logger.Error("Failed to record clip", zap.Error(err))
						}
					}

					seen++
					if count > 0 && seen >= count {
						return nil
					}
				}
			}
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "watch timeout duration (0 for infinite)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many changes (0 for no limit)")
	cmd.Flags().BoolVar(&record, "record", false, "save each change to the history")
	return cmd
}

func recordItem(item *clipboard.Item) error {
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if _, err := store.Save(item); err != nil {
		return fmt.Errorf("failed to record clip: %w", err)
	}
	return nil
}

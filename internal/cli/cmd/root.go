package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/longan/internal/common"
	"github.com/berrythewa/longan/internal/config"
	"github.com/berrythewa/longan/pkg/datetime"
)

var (
	// Global flags
	configFile string
	logLevel   string
	useJSON    bool
	noColor    bool

	stopZoneWatch context.CancelFunc
)

// newRootCmd builds the command tree. A fresh tree is built per run so
// flag values never leak between invocations.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "longan",
		Short: "Clipboard and date/time helpers",
		Long: `Longan bundles small helpers for everyday desktop work:
  • Copy, paste and clear the system clipboard (text, URIs and intents)
  • Watch clipboard changes and keep a local history
  • Format, parse and shift dates with familiar patterns
  • Follow the system time zone as it changes`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if stopZoneWatch != nil {
				stopZoneWatch()
				stopZoneWatch = nil
			}
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is the platform config dir)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&useJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newClipCmd(),
		newDateCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}

	log, err := common.NewLogger(loaded)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	SetConfig(loaded)
	SetZapLogger(log)

	zones := newZoneCache()
	if loaded.DateTime.WatchZone {
		var watchCtx context.Context
		watchCtx, stopZoneWatch = context.WithCancel(ctx)
		if err := zones.Watch(watchCtx); err != nil {
			logger.Debug("System zone watch unavailable", zap.Error(err))
		}
	}
	datetime.SetDefaultZoneCache(zones)

	logger.Debug("Configuration loaded",
		zap.String("device_id", loaded.DeviceID),
		zap.String("history_db", loaded.History.DBPath))
	return nil
}

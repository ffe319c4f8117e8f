package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/berrythewa/longan/internal/config"
	"github.com/berrythewa/longan/internal/storage"
	"github.com/berrythewa/longan/pkg/clipboard"
	"github.com/berrythewa/longan/pkg/datetime"
	"github.com/berrythewa/longan/pkg/format"
)

// Shared variables across all commands
var (
	cfg    *config.Config
	logger = zap.NewNop()
)

// Replaced in tests.
var (
	newBackend = func() clipboard.Backend { return clipboard.NewSystemBackend() }
	newClock   = func() clockwork.Clock { return clockwork.NewRealClock() }
)

// SetConfig sets the configuration for commands
func SetConfig(config *config.Config) {
	cfg = config
}

func GetConfig() *config.Config {
	return cfg
}

// SetZapLogger sets the logger for commands
func SetZapLogger(log *zap.Logger) {
	logger = log
}

func GetZapLogger() *zap.Logger {
	return logger
}

func newManager() *clipboard.Manager {
	return clipboard.NewManager(newBackend(),
		clipboard.WithLogger(logger),
		clipboard.WithPollInterval(cfg.Clipboard.PollInterval),
		clipboard.WithClock(newClock()))
}

func openStorage() (*storage.BoltStorage, error) {
	return storage.NewBoltStorage(storage.StorageConfig{
		DBPath:         cfg.History.DBPath,
		DeviceID:       cfg.DeviceID,
		Logger:         logger,
		KeepItems:      cfg.History.KeepItems,
		MaxOccurrences: cfg.History.MaxOccurrences,
	})
}

func newZoneCache() *datetime.ZoneCache {
	return datetime.NewZoneCache(
		datetime.WithZoneLogger(logger),
		datetime.WithWatchPaths(cfg.DateTime.ZonePaths...))
}

// newCalendar returns a calendar in the configured zone, or in the
// process-wide system zone cache set up by the root command.
func newCalendar() *datetime.Calendar {
	opts := []datetime.CalendarOption{
		datetime.WithClock(newClock()),
		datetime.WithZoneCache(datetime.DefaultZoneCache()),
	}
	if loc := cfg.Location(); loc != nil {
		opts = append(opts, datetime.WithLocation(loc))
	}
	return datetime.NewCalendar(opts...)
}

// newCalendarIn returns a calendar in the named IANA zone, or in the
// configured zone when name is empty.
func newCalendarIn(name string) (*datetime.Calendar, error) {
	if name == "" {
		return newCalendar(), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid zone: %w", err)
	}
	return datetime.NewCalendar(datetime.WithClock(newClock()), datetime.WithLocation(loc)), nil
}

func formatOptions(compact bool) format.Options {
	opts := format.DefaultOptions()
	if compact {
		opts = format.CompactOptions()
	}
	if noColor || os.Getenv("NO_COLOR") != "" {
		opts.UseColors = false
		opts.UseIcons = false
	}
	return opts
}

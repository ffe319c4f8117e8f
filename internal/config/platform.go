// File: internal/config/platform.go

package config

import (
	"runtime"
	"time"
)

// PlatformDefaults holds platform-specific default values
type PlatformDefaults struct {
	// Clipboard monitoring
	PollInterval time.Duration

	// System time zone tracking
	WatchZone bool
	ZonePaths []string
}

// GetPlatformDefaults returns platform-optimized default values
func GetPlatformDefaults() PlatformDefaults {
	switch runtime.GOOS {
	case "windows":
		// the zone lives in the registry, there is no file to watch
		return PlatformDefaults{
			PollInterval: 250 * time.Millisecond,
			WatchZone:    false,
		}

	case "darwin":
		return PlatformDefaults{
			PollInterval: 500 * time.Millisecond,
			WatchZone:    true,
			ZonePaths:    []string{"/etc/localtime"},
		}

	default: // Linux and other Unix-like systems
		return PlatformDefaults{
			PollInterval: 500 * time.Millisecond,
			WatchZone:    true,
			ZonePaths:    []string{"/etc/localtime", "/etc/timezone"},
		}
	}
}

// ApplyPlatformDefaults fills settings left empty with platform defaults
func ApplyPlatformDefaults(cfg *Config) {
	defaults := GetPlatformDefaults()

	if cfg.Clipboard.PollInterval == 0 {
		cfg.Clipboard.PollInterval = defaults.PollInterval
	}
	if len(cfg.DateTime.ZonePaths) == 0 {
		cfg.DateTime.ZonePaths = defaults.ZonePaths
	}
}

// File: internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/berrythewa/longan/pkg/datetime"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ConfigPaths holds all relevant paths for the application
type ConfigPaths struct {
	BaseDir    string // Base directory for config files
	ConfigFile string // Path to the config file
	DataDir    string // Directory for application data
	DBFile     string // Path to the clip history database
	LogDir     string // Directory for log files
}

// Config holds all application configuration
type Config struct {
	DeviceID   string `yaml:"device_id"`
	DeviceName string `yaml:"device_name"`

	Log       LogConfig       `yaml:"log"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	History   HistoryConfig   `yaml:"history"`
	DateTime  DateTimeConfig  `yaml:"datetime"`
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
	Output string `yaml:"output"` // "stderr", "stdout" or a file path
}

// ClipboardConfig holds clipboard monitoring options
type ClipboardConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// HistoryConfig holds the clip history store settings
type HistoryConfig struct {
	DBPath         string `yaml:"db_path"`
	KeepItems      int    `yaml:"keep_items"`
	MaxOccurrences int    `yaml:"max_occurrences"`
}

// DateTimeConfig holds date and time defaults
type DateTimeConfig struct {
	TimeZone  string   `yaml:"time_zone"` // empty means the system zone
	Pattern   string   `yaml:"pattern"`
	WatchZone bool     `yaml:"watch_zone"`
	ZonePaths []string `yaml:"zone_paths"`
}

const DefaultPattern = "yyyy-MM-dd HH:mm:ss"

// These are package-level variables so tests can replace them.
var (
	getConfigPath     = defaultConfigPath
	getDefaultDataDir = defaultDataDir
	generateDeviceID  = func() string { return uuid.New().String() }
	getHostname       = os.Hostname
)

// GetConfigPaths returns the platform-specific configuration paths
func GetConfigPaths() (*ConfigPaths, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	dataDir, err := getDefaultDataDir()
	if err != nil {
		return nil, err
	}
	return &ConfigPaths{
		BaseDir:    filepath.Dir(configPath),
		ConfigFile: configPath,
		DataDir:    dataDir,
		DBFile:     filepath.Join(dataDir, "history.db"),
		LogDir:     filepath.Join(dataDir, "logs"),
	}, nil
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	dataDir, err := getDefaultDataDir()
	if err != nil {
		dataDir = filepath.Join(os.TempDir(), "longan")
	}
	return defaultConfigIn(dataDir)
}

func defaultConfigIn(dataDir string) *Config {
	hostname, err := getHostname()
	if err != nil {
		hostname = "unknown"
	}
	defaults := GetPlatformDefaults()

	return &Config{
		DeviceID:   generateDeviceID(),
		DeviceName: hostname,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Clipboard: ClipboardConfig{
			PollInterval: defaults.PollInterval,
		},
		History: HistoryConfig{
			DBPath:         filepath.Join(dataDir, "history.db"),
			KeepItems:      50,
			MaxOccurrences: 20,
		},
		DateTime: DateTimeConfig{
			Pattern:   DefaultPattern,
			WatchZone: defaults.WatchZone,
			ZonePaths: defaults.ZonePaths,
		},
	}
}

// Load loads the configuration from the specified file or creates default if not exists
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	dataDir, err := getDefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	cfg := defaultConfigIn(dataDir)

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// fields missing from the file keep their defaults
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if cfg.DeviceID == "" {
			cfg.DeviceID = generateDeviceID()
		}
		ApplyPlatformDefaults(cfg)
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to the specified file
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the values that would otherwise fail later at use.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be json or console, got %q", c.Log.Format))
	}
	if c.Clipboard.PollInterval < 10*time.Millisecond {
		errs = append(errs, fmt.Errorf("clipboard.poll_interval: must be at least 10ms, got %s", c.Clipboard.PollInterval))
	}
	if c.History.KeepItems < 0 {
		errs = append(errs, fmt.Errorf("history.keep_items: must not be negative"))
	}
	if c.History.MaxOccurrences < 1 {
		errs = append(errs, fmt.Errorf("history.max_occurrences: must be at least 1"))
	}
	if c.DateTime.TimeZone != "" {
		if _, err := time.LoadLocation(c.DateTime.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("datetime.time_zone: %w", err))
		}
	}
	if _, err := datetime.NewFormatter(c.DateTime.Pattern); err != nil {
		errs = append(errs, fmt.Errorf("datetime.pattern: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the configured time zone, or nil for the system zone.
func (c *Config) Location() *time.Location {
	if c.DateTime.TimeZone == "" {
		return nil
	}
	loc, err := time.LoadLocation(c.DateTime.TimeZone)
	if err != nil {
		return nil
	}
	return loc
}

// overrideFromEnv overrides configuration values from environment variables
func overrideFromEnv(config *Config) {
	if val := os.Getenv("LONGAN_DEVICE_ID"); val != "" {
		config.DeviceID = val
	}
	if val := os.Getenv("LONGAN_DEVICE_NAME"); val != "" {
		config.DeviceName = val
	}

	if val := os.Getenv("LONGAN_LOG_LEVEL"); val != "" {
		config.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LONGAN_LOG_FORMAT"); val != "" {
		config.Log.Format = val
	}

	if val := os.Getenv("LONGAN_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.Clipboard.PollInterval = d
		}
	}

	if val := os.Getenv("LONGAN_HISTORY_DB"); val != "" {
		config.History.DBPath = val
	}
	if val := os.Getenv("LONGAN_KEEP_ITEMS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.History.KeepItems = n
		}
	}

	if val := os.Getenv("LONGAN_TIMEZONE"); val != "" {
		config.DateTime.TimeZone = val
	}
	if val := os.Getenv("LONGAN_PATTERN"); val != "" {
		config.DateTime.Pattern = val
	}
	if val := os.Getenv("LONGAN_WATCH_ZONE"); val != "" {
		config.DateTime.WatchZone = val == "true"
	}
}

// File: internal/config/config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// withTempPaths points the config and data paths at a temp dir and returns the config path.
func withTempPaths(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	origGetConfigPath := getConfigPath
	origGetDefaultDataDir := getDefaultDataDir
	origGenerateDeviceID := generateDeviceID
	t.Cleanup(func() {
		getConfigPath = origGetConfigPath
		getDefaultDataDir = origGetDefaultDataDir
		generateDeviceID = origGenerateDeviceID
	})

	getConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "config.yaml"), nil
	}
	getDefaultDataDir = func() (string, error) {
		return filepath.Join(tempDir, "data"), nil
	}
	generateDeviceID = func() string {
		return "mock-device-id"
	}

	configPath, _ := getConfigPath()
	return configPath
}

func TestLoad_CreatesDefault(t *testing.T) {
	configPath := withTempPaths(t)

	cfg, err := Load("")
	require.NoError(t, err)

	defaultCfg := DefaultConfig()
	assert.Equal(t, defaultCfg.Log.Level, cfg.Log.Level)
	assert.Equal(t, defaultCfg.Clipboard.PollInterval, cfg.Clipboard.PollInterval)
	assert.Equal(t, "mock-device-id", cfg.DeviceID)
	assert.Equal(t, filepath.Join(filepath.Dir(configPath), "data", "history.db"), cfg.History.DBPath)
	assert.Equal(t, DefaultPattern, cfg.DateTime.Pattern)

	_, err = os.Stat(configPath)
	assert.NoError(t, err, "default config should be written")
}

func TestLoad_ExistingFileKeepsDefaultsForMissingFields(t *testing.T) {
	configPath := withTempPaths(t)

	data := []byte(`device_id: existing-device-id
log:
  level: debug
clipboard:
  poll_interval: 2s
datetime:
  time_zone: UTC
  pattern: dd/MM/yyyy
`)
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "existing-device-id", cfg.DeviceID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 2*time.Second, cfg.Clipboard.PollInterval)
	assert.Equal(t, 50, cfg.History.KeepItems)
	assert.Equal(t, "dd/MM/yyyy", cfg.DateTime.Pattern)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_ZeroPollIntervalUsesPlatformDefault(t *testing.T) {
	configPath := withTempPaths(t)
	require.NoError(t, os.WriteFile(configPath, []byte("clipboard:\n  poll_interval: 0s\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, GetPlatformDefaults().PollInterval, cfg.Clipboard.PollInterval)
}

func TestSave_RoundTrip(t *testing.T) {
	configPath := withTempPaths(t)

	testConfig := DefaultConfig()
	testConfig.DeviceName = "test-device"
	testConfig.Log.Level = "debug"
	testConfig.DateTime.TimeZone = "UTC"

	require.NoError(t, testConfig.Save(configPath))

	raw, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "poll_interval: 500ms")

	var loaded Config
	require.NoError(t, yaml.Unmarshal(raw, &loaded))
	assert.Equal(t, *testConfig, loaded)
}

func TestLoad_ErrorHandling(t *testing.T) {
	configPath := withTempPaths(t)

	require.NoError(t, os.WriteFile(configPath, []byte("log: [unclosed"), 0644))
	_, err := Load(configPath)
	assert.Error(t, err, "malformed YAML must fail")

	getConfigPath = func() (string, error) { return "", os.ErrPermission }
	_, err = Load("")
	assert.ErrorIs(t, err, os.ErrPermission)

	getDefaultDataDir = func() (string, error) { return "", os.ErrPermission }
	_, err = Load(configPath)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestLoad_EnvOverrides(t *testing.T) {
	configPath := withTempPaths(t)

	t.Setenv("LONGAN_DEVICE_ID", "env-device")
	t.Setenv("LONGAN_LOG_LEVEL", "WARN")
	t.Setenv("LONGAN_POLL_INTERVAL", "1500ms")
	t.Setenv("LONGAN_KEEP_ITEMS", "7")
	t.Setenv("LONGAN_TIMEZONE", "UTC")
	t.Setenv("LONGAN_PATTERN", "yyyyMMdd")
	t.Setenv("LONGAN_WATCH_ZONE", "false")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-device", cfg.DeviceID)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 1500*time.Millisecond, cfg.Clipboard.PollInterval)
	assert.Equal(t, 7, cfg.History.KeepItems)
	assert.Equal(t, "UTC", cfg.DateTime.TimeZone)
	assert.Equal(t, "yyyyMMdd", cfg.DateTime.Pattern)
	assert.False(t, cfg.DateTime.WatchZone)
}

func TestValidate(t *testing.T) {
	withTempPaths(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"poll too fast", func(c *Config) { c.Clipboard.PollInterval = time.Millisecond }},
		{"negative keep", func(c *Config) { c.History.KeepItems = -1 }},
		{"no occurrences", func(c *Config) { c.History.MaxOccurrences = 0 }},
		{"unknown zone", func(c *Config) { c.DateTime.TimeZone = "Mars/Olympus" }},
		{"bad pattern", func(c *Config) { c.DateTime.Pattern = "yyyy-bb" }},
	}

	require.NoError(t, DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	configPath := withTempPaths(t)

	paths, err := GetConfigPaths()
	require.NoError(t, err)
	assert.Equal(t, configPath, paths.ConfigFile)
	assert.Equal(t, filepath.Dir(configPath), paths.BaseDir)
	assert.Equal(t, filepath.Join(paths.DataDir, "history.db"), paths.DBFile)
}

func TestDefaultPaths_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LONGAN_CONFIG_DIR", "/tmp/longan-config")
	t.Setenv("LONGAN_DATA_DIR", "/tmp/longan-data")

	path, err := defaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/longan-config", "config.yaml"), path)

	dir, err := defaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/longan-data", dir)
}

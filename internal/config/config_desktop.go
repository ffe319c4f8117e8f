// File: internal/config/config_desktop.go

package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// defaultConfigPath returns the path to the config file on desktop platforms
func defaultConfigPath() (string, error) {
	if dir := os.Getenv("LONGAN_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.yaml"), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(configDir, "Longan", "config.yaml"), nil
	case "darwin":
		return filepath.Join(configDir, "com.berrythewa.longan", "config.yaml"), nil
	default: // Linux and others
		return filepath.Join(configDir, "longan", "config.yaml"), nil
	}
}

// defaultDataDir returns the path to the data directory on desktop platforms
func defaultDataDir() (string, error) {
	if path := os.Getenv("LONGAN_DATA_DIR"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "windows":
		if appData, err := os.UserCacheDir(); err == nil {
			return filepath.Join(appData, "Longan", "Data"), nil
		}
		return filepath.Join(homeDir, "AppData", "Local", "Longan"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Longan"), nil
	default:
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "longan"), nil
		}
		return filepath.Join(homeDir, ".local", "share", "longan"), nil
	}
}

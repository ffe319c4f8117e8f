package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/berrythewa/longan/internal/config"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Longan configuration",
		Long: `Manage Longan configuration:
  • Initialize configuration for first-time setup
  • Show the effective configuration
  • Validate the configuration file
  • Print the configuration file path`,
		// Replaces the root hook: these commands must not create the
		// config file as a side effect of loading it.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func activeConfigPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	paths, err := config.GetConfigPaths()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	return paths.ConfigFile, nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration for first-time setup",
		Long: `Initialize Longan configuration with sensible defaults.
This creates the configuration directory and writes a default
configuration file with platform-specific paths.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("configuration already exists at %s\nUse --force to overwrite or 'longan config show' to view current config", configPath)
			}

			defaults := config.DefaultConfig()
			logger.Info("Initializing configuration", zap.String("config_path", configPath))
			if err := defaults.Save(configPath); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration initialized at: %s\n", configPath)
			fmt.Fprintf(out, "✓ History database: %s\n", defaults.History.DBPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force overwrite existing configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after defaults and LONGAN_* environment
overrides are applied. A default file is created if none exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if useJSON {
				format = "json"
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(loaded)
			case "yaml":
				data, err := yaml.Marshal(loaded)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				_, err = out.Write(data)
				return err
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml or json)")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(configPath)
			if err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			parsed := config.DefaultConfig()
			if err := yaml.Unmarshal(data, parsed); err != nil {
				return fmt.Errorf("invalid YAML syntax: %w", err)
			}
			if err := parsed.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), configPath)
			return nil
		},
	}
}

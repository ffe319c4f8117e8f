package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, set from main
var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

// SetVersionInfo allows setting version info from outside
func SetVersionInfo(v, bt, c string) {
	version = v
	buildTime = bt
	commit = c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs neither config nor logger
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Longan\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Commit:     %s\n", commit)
		},
	}
}

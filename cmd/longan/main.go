package main

import (
	"github.com/berrythewa/longan/internal/cli/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

func main() {
	cmd.SetVersionInfo(version, buildTime, commit)
	cmd.Execute()
}

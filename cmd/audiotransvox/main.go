package main

import (
	"os"

	"github.com/SwartzMss/AudioTransVox/internal/cli"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.BuildInfo{Version: Version, Commit: Commit}))
}

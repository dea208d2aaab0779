// Package main is the entry point for the deckcheck CLI
package main

import (
	"os"

	"github.com/roach88/deckcheck/internal/cli"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(cli.GetExitCode(err))
	}
}

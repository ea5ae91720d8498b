// Package main is the entry point for the ledgersync CLI.
// The CLI is the operator terminal tool for interacting with the ledgersync API.
package main

import (
	"os"

	"ledgersync/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/AI2HU/promptpulse/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

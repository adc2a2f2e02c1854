package main

import (
	"os"

	"github.com/bluedatahq/shelfd/internal/cmd"
)

// Build identity, overridden at link time:
//
//	go build -ldflags "-X main.version=... -X main.commit=... -X main.buildDate=..."
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/ytget/rollcall/internal/cli"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date
	cli.RootCmd.Version = version

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"github.com/tacogips/stackzip/internal/cli"
	iversion "github.com/tacogips/stackzip/internal/version"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	iversion.Version = version
	iversion.GitCommit = gitCommit
	iversion.BuildDate = buildDate

	cli.Execute()
}

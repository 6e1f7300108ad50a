package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/dphaener/golisp/internal/cli/commands"
)

// version, gitCommit, and buildDate are overridden at build time via
// -ldflags "-X main.version=... -X main.gitCommit=... -X main.buildDate=...".
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	commands.Version = version
	commands.GitCommit = gitCommit
	commands.BuildDate = buildDate

	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package commands implements golisp's CLI subcommands: run, repl, compile,
// and config, wired together by NewRootCommand into a single cobra root.
package commands

import (
	"github.com/spf13/cobra"
)

// Version, GitCommit, and BuildDate are set from cmd/golisp/main.go's own
// build-time vars before Execute runs.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand builds the golisp root command with every subcommand
// registered.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "golisp",
		Short: "golisp interpreter and tooling",
		Long: `golisp is a small Lisp-like language: s-expression syntax, first-class
closures, configurable variable scoping, a cons/car/cdr list model, and
decimal arithmetic. Source runs on a tree-walking evaluator or a
stack-based bytecode VM over the same AST, builtins, and value
representation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("verbose", false, "enable debug logging at the start and end of each eval/VM run")

	root.AddCommand(
		newVersionCommand(),
		newRunCommand(),
		newReplCommand(),
		newCompileCommand(),
		newConfigCommand(),
	)

	return root
}

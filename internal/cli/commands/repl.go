package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dphaener/golisp/internal/cli/config"
	"github.com/dphaener/golisp/internal/obs"
	"github.com/dphaener/golisp/internal/value"
	"github.com/dphaener/golisp/pkg/golisp"
)

func newReplCommand() *cobra.Command {
	var stdinPath string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive golisp session",
		Long: `Start an interactive golisp session: each line is parsed and evaluated
against a single shared environment, so a "set" on one line is visible to
the next.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runRepl(stdinPath, verbose)
		},
	}

	cmd.Flags().StringVar(&stdinPath, "stdin", "", "read REPL input (and guest (read) calls) from a file instead of the terminal, for scripted sessions")

	return cmd
}

func runRepl(stdinPath string, verbose bool) error {
	var input io.Reader = os.Stdin
	interactive := true

	if stdinPath != "" {
		f, err := os.Open(stdinPath)
		if err != nil {
			return fmt.Errorf("opening --stdin file: %w", err)
		}
		defer f.Close()
		input = f
		interactive = false
	}

	scanner := bufio.NewScanner(input)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	mode, err := cfg.ScopingMode()
	if err != nil {
		return err
	}

	// The REPL's own line source also backs the guest (read) builtin,
	// matching test-nodes.py's test_repl convention of driving both the
	// prompt loop and Read.Eval from the same canned-line source.
	interp := golisp.New(
		golisp.WithScoping(mode),
		golisp.WithPrecision(cfg.Numeric.Precision),
		golisp.WithLogger(obs.New(verbose)),
		golisp.WithStdinFunc(func(_ []value.Value) (value.Value, error) {
			if !scanner.Scan() {
				return value.NewString(""), nil
			}
			return value.NewString(scanner.Text()), nil
		}),
	)

	prompt := color.New(color.FgCyan).SprintFunc()

	for {
		if interactive {
			fmt.Print(prompt("golisp> "))
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		v, err := interp.Eval(line)
		if err != nil {
			color.New(color.FgRed).Println(err)
			continue
		}
		fmt.Println(v.String())
	}

	if interactive {
		fmt.Println()
	}
	return nil
}

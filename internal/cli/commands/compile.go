package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dphaener/golisp/internal/cli/config"
	"github.com/dphaener/golisp/pkg/golisp"
)

func newCompileCommand() *cobra.Command {
	var optimize, showStats bool

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Lower a source file to bytecode and print the instruction sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			mode, err := cfg.ScopingMode()
			if err != nil {
				return err
			}

			in := golisp.New(
				golisp.WithScoping(mode),
				golisp.WithPrecision(cfg.Numeric.Precision),
				golisp.WithOptimize(optimize),
			)

			insts, err := in.Compile(string(src))
			if err != nil {
				printRunError(err)
				return err
			}
			for i, inst := range insts {
				fmt.Printf("%4d  %s\n", i, inst.String())
			}

			if showStats {
				_, stats, err := in.RunVM(string(src))
				if err != nil {
					printRunError(err)
					return err
				}
				fmt.Println()
				printStats(stats)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&optimize, "optimize", true, "apply constant-folding, tail-call identification, and peephole stack-op elimination")
	cmd.Flags().BoolVar(&showStats, "stats", false, "also run the compiled bytecode and print Stats")

	return cmd
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dphaener/golisp/internal/cache"
	"github.com/dphaener/golisp/internal/cli/config"
	"github.com/dphaener/golisp/internal/obs"
	"github.com/dphaener/golisp/internal/watch"
	"github.com/dphaener/golisp/pkg/golisp"
)

func newRunCommand() *cobra.Command {
	var useVM, showStats, watchMode, optimize bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a golisp source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			path := args[0]

			run := func() error {
				return runFile(path, useVM || showStats, showStats, optimize, verbose)
			}

			if !watchMode {
				return run()
			}
			return runWatching(path, run)
		},
	}

	cmd.Flags().BoolVar(&useVM, "vm", false, "run on the bytecode VM instead of the tree-walking evaluator")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print VM Stats after running (implies --vm)")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "re-run the file whenever it changes on disk")
	cmd.Flags().BoolVar(&optimize, "optimize", true, "apply constant-folding and tail-call identification before lowering")

	return cmd
}

func runFile(path string, useVM, showStats, optimize, verbose bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	mode, err := cfg.ScopingMode()
	if err != nil {
		return err
	}

	c, err := cache.New(cache.DefaultSize)
	if err != nil {
		return err
	}

	in := golisp.New(
		golisp.WithScoping(mode),
		golisp.WithPrecision(cfg.Numeric.Precision),
		golisp.WithLogger(obs.New(verbose)),
		golisp.WithCache(c),
		golisp.WithOptimize(optimize),
	)

	if useVM {
		v, stats, err := in.RunVM(string(src))
		if err != nil {
			printRunError(err)
			return err
		}
		fmt.Println(v.String())
		if showStats {
			printStats(stats)
		}
		return nil
	}

	v, err := in.Eval(string(src))
	if err != nil {
		printRunError(err)
		return err
	}
	fmt.Println(v.String())
	return nil
}

// runWatching runs once immediately, then re-runs whenever a file under
// path's directory that matches path's extension or one of the configured
// watch patterns changes, until interrupted. There is no separate
// rebuild/reload pipeline to drive — a source change simply re-executes the
// file.
func runWatching(path string, run func() error) error {
	if err := run(); err != nil {
		printRunError(err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	patterns := append([]string{"*" + filepath.Ext(path)}, cfg.Watch.Patterns...)
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond

	fw, err := watch.NewFileWatcher(dir, patterns, cfg.Watch.IgnoreDirs, debounce, func(changed []string) error {
		fmt.Printf("\n[watch] re-running %s\n", path)
		if err := run(); err != nil {
			printRunError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		return err
	}
	defer fw.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

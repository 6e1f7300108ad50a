package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/dphaener/golisp/internal/bytecode"
)

// printRunError renders err in red on stderr.
func printRunError(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, err)
}

// printStats prints the non-semantic VM counters test-nodes.py's
// test_bytecode3 uses to assert tail-call frame-depth bounds.
func printStats(stats *bytecode.Stats) {
	fmt.Printf("instructions executed: %d\n", stats.NumInsts)
	fmt.Printf("function calls:        %d\n", stats.FuncCalls)
	fmt.Printf("frames created:        %d\n", stats.NumFrames)
	fmt.Printf("max frame depth:       %d\n", stats.MaxFrameDepth)
}

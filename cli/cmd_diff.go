package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pomfort/ascmhl-go/config"
	"github.com/pomfort/ascmhl-go/format"
	"github.com/pomfort/ascmhl-go/internals"
)

// DiffCommand reports new and missing paths under a sealed root against its
// recorded history, without hashing any file.
type DiffCommand struct {
	Path    string
	Verbose bool
	Ignore  []string
}

var diffCommand *DiffCommand

var argDiffVerbose bool
var argDiffIgnore []string

var diffCmd = &cobra.Command{
	Use:   "diff [-v] [-i <pattern>] <path>",
	Short: "Report new and missing paths against the recorded history without hashing",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one positional argument {path}, got %d", len(args))
		}
		diffCommand = &DiffCommand{Path: args[0], Verbose: argDiffVerbose, Ignore: argDiffIgnore}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		exitCode, cmdError = diffCommand.Run(w, log)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	f := diffCmd.Flags()
	f.BoolVarP(&argDiffVerbose, "verbose", "v", false, "emit one line per new/missing path")
	f.StringArrayVarP(&argDiffIgnore, "ignore", "i", nil, "additional glob pattern to ignore (repeatable)")
}

// Run executes the `diff` command.
func (c *DiffCommand) Run(w, log Output) (int, error) {
	cfg, err := config.Resolve(argConfigPath)
	if err != nil {
		return exitCodeFor(err), err
	}

	info, err := os.Stat(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			cfgErr := &internals.ConfigError{Reason: fmt.Sprintf("%s does not exist", c.Path)}
			return exitCodeFor(cfgErr), cfgErr
		}
		ioErr := &internals.IOError{Path: c.Path, Err: err}
		return exitCodeFor(ioErr), ioErr
	}
	if !info.IsDir() {
		cfgErr := &internals.ConfigError{Reason: fmt.Sprintf("%s is not a directory", c.Path)}
		return exitCodeFor(cfgErr), cfgErr
	}

	ignore := cfg.IgnoreMatcher()
	if len(c.Ignore) > 0 {
		ignore = internals.PatternIgnore{Patterns: c.Ignore}
	}

	store, err := format.NewStore(c.Path)
	if err != nil {
		return exitCodeFor(err), err
	}

	genNumbers, err := store.ListGenerations()
	if err != nil {
		return exitCodeFor(err), err
	}
	generations := make([]internals.Generation, 0, len(genNumbers))
	for _, n := range genNumbers {
		gen, err := store.Load(n)
		if err != nil {
			return exitCodeFor(err), err
		}
		generations = append(generations, gen)
	}
	history := internals.BuildHistoryIndex(generations)

	walker := &internals.Walker{RootPath: c.Path, Ignore: ignore}
	files, _, err := walker.WalkNames(context.Background())
	if err != nil {
		return exitCodeFor(err), err
	}

	report := internals.ComputeDiff(history, files)

	verbose := &verboseOutput{inner: w, enabled: c.Verbose}
	for _, p := range report.New {
		verbose.Printfln("new             %s", p)
	}
	for _, p := range report.Missing {
		verbose.Printfln("missing         %s", p)
	}

	w.Printfln("%d new, %d missing", len(report.New), len(report.Missing))

	if len(report.Missing) > 0 {
		failErr := &internals.VerificationFailedError{Mismatches: 0, Missing: len(report.Missing)}
		return exitCodeFor(failErr), failErr
	}

	return exitSuccess, nil
}

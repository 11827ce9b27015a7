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

// VerifyCommand hashes every file under a sealed root and compares it
// against the root's HistoryIndex without writing a new generation.
type VerifyCommand struct {
	Path    string
	Verbose bool
	Ignore  []string
}

var verifyCommand *VerifyCommand

var argVerifyVerbose bool
var argVerifyIgnore []string

var verifyCmd = &cobra.Command{
	Use:   "verify [-v] [-i <pattern>] <path>",
	Short: "Verify a directory tree against its recorded history without writing a new generation",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one positional argument {path}, got %d", len(args))
		}
		verifyCommand = &VerifyCommand{Path: args[0], Verbose: argVerifyVerbose, Ignore: argVerifyIgnore}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		exitCode, cmdError = verifyCommand.Run(w, log)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	f := verifyCmd.Flags()
	f.BoolVarP(&argVerifyVerbose, "verbose", "v", false, "emit per-entry progress lines")
	f.StringArrayVarP(&argVerifyIgnore, "ignore", "i", nil, "additional glob pattern to ignore (repeatable)")
}

// Run executes the `verify` command.
func (c *VerifyCommand) Run(w, log Output) (int, error) {
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

	verbose := &verboseOutput{inner: w, enabled: c.Verbose}

	orchestrator := &internals.SealOrchestrator{
		OpenStore: func(rootPath string) (internals.ManifestStore, error) {
			return format.NewStore(rootPath)
		},
	}

	opts := internals.SealOptions{
		Algorithm: internals.Algorithm(cfg.Algorithm),
		Ignore:    ignore,
		Workers:   cfg.Workers,
		DryRun:    true,
		Progress:  func(line string) { verbose.Println(line) },
	}

	result, err := orchestrator.Seal(context.Background(), c.Path, opts)
	if err != nil {
		return exitCodeFor(err), err
	}

	if result.Failed() {
		mismatches, missing := countFailures(result)
		failErr := &internals.VerificationFailedError{Mismatches: mismatches, Missing: missing}
		w.Printfln("verification failed: %d mismatch(es), %d missing file(s)", mismatches, missing)
		return exitCodeFor(failErr), failErr
	}

	w.Println("verification passed")
	return exitSuccess, nil
}

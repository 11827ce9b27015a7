package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pomfort/ascmhl-go/config"
	"github.com/pomfort/ascmhl-go/format"
	"github.com/pomfort/ascmhl-go/internals"
)

// CreateCommand defines the CLI command parameters for `create`.
type CreateCommand struct {
	Path                string
	Verbose             bool
	Algorithm           string
	SkipDirectoryHashes bool
	Ignore              []string
	Workers             int
}

var createCommand *CreateCommand

var argCreateVerbose bool
var argCreateAlgorithm string
var argCreateNoDirHashes bool
var argCreateIgnore []string
var argCreateWorkers int

// createCmd represents the `create` subcommand: seal a directory tree.
var createCmd = &cobra.Command{
	Use:   "create [-v] [-h <algorithm>] [-n] [-i <pattern>] [-w <workers>] <path>",
	Short: "Seal a directory tree, writing a new generation",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one positional argument {path}, got %d", len(args))
		}
		algo := ""
		if cmd.Flags().Changed("hash") {
			if !internals.IsSupportedAlgorithm(internals.Algorithm(argCreateAlgorithm)) {
				return fmt.Errorf("unknown algorithm %q", argCreateAlgorithm)
			}
			algo = argCreateAlgorithm
		}

		createCommand = &CreateCommand{
			Path:                args[0],
			Verbose:             argCreateVerbose,
			Algorithm:           algo,
			SkipDirectoryHashes: argCreateNoDirHashes,
			Ignore:              argCreateIgnore,
			Workers:             argCreateWorkers,
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		exitCode, cmdError = createCommand.Run(w, log)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	f := createCmd.Flags()
	f.BoolVarP(&argCreateVerbose, "verbose", "v", false, "emit per-entry progress lines")
	f.StringVarP(&argCreateAlgorithm, "hash", "h", string(internals.AlgoXXH64), "primary algorithm for new hashes this seal")
	f.BoolVarP(&argCreateNoDirHashes, "no-directory-hashes", "n", false, "skip directory digest computation")
	f.StringArrayVarP(&argCreateIgnore, "ignore", "i", nil, "additional glob pattern to ignore (repeatable)")
	f.IntVarP(&argCreateWorkers, "workers", "w", 0, "size of the hashing worker pool (0 = GOMAXPROCS)")
}

// Run executes the `create` command, writing its progress to w and its
// errors to log. It returns the process exit code and the error (if any)
// that determined it.
func (c *CreateCommand) Run(w, log Output) (int, error) {
	cfg, err := config.Resolve(argConfigPath)
	if err != nil {
		return exitCodeFor(err), err
	}

	algo := c.Algorithm
	if algo == "" {
		algo = cfg.Algorithm
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

	workers := c.Workers
	if workers == 0 {
		workers = cfg.Workers
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
		Algorithm:           internals.Algorithm(algo),
		Ignore:              ignore,
		Workers:              workers,
		SkipDirectoryHashes: c.SkipDirectoryHashes || cfg.SkipDirectoryHashes,
		Creator: internals.CreatorInfo{
			ToolName:    "ascmhl-go",
			ToolVersion: toolVersion,
			CreatedAt:   time.Now().UTC(),
			HostName:    cfg.ResolvedHostName(),
			ProcessID:   uuid.NewString(),
		},
		Progress: func(line string) { verbose.Println(line) },
	}

	result, err := orchestrator.Seal(context.Background(), c.Path, opts)
	if err != nil {
		return exitCodeFor(err), err
	}

	w.Printfln("Created new generation %s", result.GenerationPath)

	if result.Failed() {
		mismatches, missing := countFailures(result)
		failErr := &internals.VerificationFailedError{Mismatches: mismatches, Missing: missing}
		return exitCodeFor(failErr), failErr
	}

	return exitSuccess, nil
}

func countFailures(r *internals.SealResult) (mismatches, missing int) {
	for _, f := range r.Generation.Files {
		switch f.Outcome {
		case internals.OutcomeHashMismatch:
			mismatches++
		case internals.OutcomeMissing:
			missing++
		}
	}
	for _, nested := range r.NestedResults {
		nm, nmiss := countFailures(&nested)
		mismatches += nm
		missing += nmiss
	}
	return
}


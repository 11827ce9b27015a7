package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pomfort/ascmhl-go/format"
	"github.com/pomfort/ascmhl-go/internals"
)

// InfoCommand prints, for one or more files, every generation that recorded
// a hash for it: the per-file counterpart to `verify`'s tree-wide summary.
type InfoCommand struct {
	RootPath   string
	Verbose    bool
	SingleFile []string
}

var infoCommand *InfoCommand

var argInfoVerbose bool
var argInfoSingleFile []string

var infoCmd = &cobra.Command{
	Use:   "info [-v] --single-file <file> [--single-file <file>]... <path>",
	Short: "Print the recorded generation history for one or more files",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one positional argument {path}, got %d", len(args))
		}
		if len(argInfoSingleFile) == 0 {
			return fmt.Errorf("at least one --single-file is required")
		}
		infoCommand = &InfoCommand{RootPath: args[0], Verbose: argInfoVerbose, SingleFile: argInfoSingleFile}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		exitCode, cmdError = infoCommand.Run(w, log)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	f := infoCmd.Flags()
	f.BoolVarP(&argInfoVerbose, "verbose", "v", false, "also print creator and process info per generation")
	f.StringArrayVar(&argInfoSingleFile, "single-file", nil, "a file to report history for (repeatable)")
}

// Run executes the `info` command.
func (c *InfoCommand) Run(w, log Output) (int, error) {
	rootAbs, err := filepath.Abs(c.RootPath)
	if err != nil {
		ioErr := &internals.IOError{Path: c.RootPath, Err: err}
		return exitCodeFor(ioErr), ioErr
	}
	if info, statErr := os.Stat(rootAbs); statErr != nil || !info.IsDir() {
		cfgErr := &internals.ConfigError{Reason: fmt.Sprintf("%s is not a directory", c.RootPath)}
		return exitCodeFor(cfgErr), cfgErr
	}

	store, err := format.NewStore(rootAbs)
	if err != nil {
		return exitCodeFor(err), err
	}

	genNumbers, err := store.ListGenerations()
	if err != nil {
		return exitCodeFor(err), err
	}
	if len(genNumbers) == 0 {
		cfgErr := &internals.ConfigError{Reason: fmt.Sprintf("%s has no recorded history", c.RootPath)}
		return exitCodeFor(cfgErr), cfgErr
	}

	generations := make([]internals.Generation, 0, len(genNumbers))
	for _, n := range genNumbers {
		gen, err := store.Load(n)
		if err != nil {
			return exitCodeFor(err), err
		}
		generations = append(generations, gen)
	}

	for _, target := range c.SingleFile {
		targetAbs, err := filepath.Abs(target)
		if err != nil {
			ioErr := &internals.IOError{Path: target, Err: err}
			return exitCodeFor(ioErr), ioErr
		}
		relPath, err := filepath.Rel(rootAbs, targetAbs)
		if err != nil {
			ioErr := &internals.IOError{Path: target, Err: err}
			return exitCodeFor(ioErr), ioErr
		}
		relPath = internals.NormalizePath(relPath)

		w.Printfln("%s:", relPath)
		for _, gen := range generations {
			for _, entry := range gen.Files {
				if entry.Path != relPath || len(entry.Hashes) == 0 {
					continue
				}
				for algo, digest := range entry.Hashes {
					w.Printfln("  generation %d (%s) %s: %s (%s)",
						gen.Number, gen.CreatedAt.Format("2006-01-02T15:04:05Z"),
						algo, internals.FormatDigest(algo, digest), entry.Outcome)
				}
				if c.Verbose {
					w.Printfln("    %s", filepath.Join(rootAbs, relPath))
					w.Printfln("    creator: %s %s, host %s, process %s",
						gen.Creator.ToolName, gen.Creator.ToolVersion, gen.Creator.HostName, gen.Creator.ProcessID)
				}
			}
		}
	}

	return exitSuccess, nil
}

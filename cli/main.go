package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pomfort/ascmhl-go/internals"
)

var rootCmd = &cobra.Command{
	Use:   "ascmhl",
	Short: "Seal directory trees with chained cryptographic manifests",
	Long: `ascmhl seals directory trees with cryptographic manifests that chain
across successive copies, so media-production workflows can prove that
every file surviving a chain of transfers is bit-identical to what was
originally sealed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&argConfigPath, "config", "", "path to config file (overrides ASCMHL_CONFIG)")
	// Registered without a shorthand so cobra's InitDefaultHelpFlag finds
	// "help" already defined and skips adding its usual -h, which would
	// otherwise collide with create's spec-mandated -h/--hash.
	rootCmd.PersistentFlags().Bool("help", false, "help for "+rootCmd.Name())
}

func main() {
	w = newOutput(os.Stdout)
	log = newOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		log.Printfln("error: %s", err)
		os.Exit(exitConfigError)
	}

	if cmdError != nil {
		log.Printfln("error: %s", cmdError)
	}
	os.Exit(exitCode)
}

// exitCodeFor maps an error returned by the sealing engine to one of the
// fixed exit codes of spec.md §6.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch err.(type) {
	case *internals.CorruptHistoryError:
		return exitCorruptHistory
	case *internals.IOError:
		return exitIOError
	case *internals.ConfigError:
		return exitConfigError
	case *internals.VerificationFailedError:
		return exitVerificationFail
	default:
		return exitConfigError
	}
}

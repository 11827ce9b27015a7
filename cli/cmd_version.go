package main

import (
	"github.com/spf13/cobra"

	"github.com/pomfort/ascmhl-go/internals"
)

const toolVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tool version and supported hash algorithms",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode, cmdError = runVersion(w)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(w Output) (int, error) {
	w.Printfln("ascmhl-go %s", toolVersion)
	w.Println("hash algorithms:")
	defaultAlgo := internals.AlgoXXH64
	for _, algo := range internals.SupportedAlgorithms() {
		marker := ""
		if algo == defaultAlgo {
			marker = " *"
		}
		w.Printfln("  %s%s", algo, marker)
	}
	w.Println("(* denotes default algorithm)")
	return exitSuccess, nil
}

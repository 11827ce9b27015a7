package main

import (
	"github.com/spf13/cobra"

	"github.com/pomfort/ascmhl-go/internals"
)

var hashAlgosCmd = &cobra.Command{
	Use:   "hashalgos",
	Short: "List the hash algorithm ids the engine recognizes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, algo := range internals.SupportedAlgorithms() {
			w.Println(string(algo))
		}
		exitCode, cmdError = exitSuccess, nil
	},
}

func init() {
	rootCmd.AddCommand(hashAlgosCmd)
}

// prescreen is the candidate pre-screening CLI: run an interactive session,
// replay the scripted scenario suite, inspect stored results, or serve the
// core over MCP stdio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prescreen/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "prescreen",
	Short: "Automated candidate pre-screening conversations",
	Long: "Prescreen drives structured screening conversations with job candidates:\n" +
		"knockout eligibility questions, open qualification questions, and\n" +
		"interview scheduling, with every session ending in exactly one recorded outcome.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

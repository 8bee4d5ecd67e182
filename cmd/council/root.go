package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; council is always invoked as one of its
// subcommands (run, onboard), mirroring the tim-coutinho-agentops CLI's
// shape rather than tarsy's single-entry-point server main.
var rootCmd = &cobra.Command{
	Use:          "council",
	Short:        "Run a council deliberation session",
	SilenceUsage: true,
}

// Execute runs the root command, exiting non-zero on any error returned by
// a subcommand.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getEnv returns the environment variable's value, or defaultValue if unset
// or empty. Grounded on cmd/tarsy/main.go's own getEnv helper.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

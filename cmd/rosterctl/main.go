// Package main provides rosterctl, a command line companion to the team
// balancing service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/teambalance/pkg/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "rosterctl",
	Short:         "Generate and stress-test league teams",
	Long:          "rosterctl balances a roster into teams locally and drives a running service with synthetic rosters.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
			return err
		}
		return logger.SetLevelString(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package cli implements the witnessctl command tree. Every subcommand
// talks to a running witnessd instance over its HTTP API.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "witnessctl",
	Short:         "Command-line client for the witness store service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("addr", "http://localhost:3030", "Base URL of the witness store service")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for admin endpoints")
}

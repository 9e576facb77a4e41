// Package cmd contains the supply chain ledger command line tool.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	url     string
	timeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8000", "Url of the tracer service.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "Timeout for each call to the service.")
}

var rootCmd = &cobra.Command{
	Use:   "sctl",
	Short: "Supply chain ledger tooling",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

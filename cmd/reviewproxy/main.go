package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reviewproxy",
	Short: "Caching proxy for Trustpilot business reviews",
	Long: `reviewproxy validates a subscriber license, aggregates a business profile
from the Trustpilot API and serves it from a one-hour cache.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

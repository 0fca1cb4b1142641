// Package main implements the matchctl CLI for operating a matchd
// deployment: dataset ingestion, index management and ad-hoc queries.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath points at the matchd YAML config used by commands
	// that talk to the backing services directly.
	configPath string
	// serverURL is the base URL for commands that go through the
	// matchd HTTP API.
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "CLI for matchd operations",
	Long: `matchctl is a command-line interface for operating a matchd deployment.
It ingests vehicle datasets into the vector index, resets the index and
runs ad-hoc recommendation queries against a running server.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to matchd YAML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9180", "matchd server URL")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(resetIndexCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(healthCmd)
}

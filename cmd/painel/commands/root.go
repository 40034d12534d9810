package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "painel",
	Short: "Painel - data quality inconsistency tracker",
	Long: `Painel Unified CLI

Tracks data quality inconsistencies reported by partner institutions.
Ingests daily snapshot exports into an append-only ledger and serves
the aggregated reports over a REST API.

Usage:
  go run ./cmd/painel [command]

Examples:
  go run ./cmd/painel api
  go run ./cmd/painel ingest
  go run ./cmd/painel scheduler start
  go run ./cmd/painel status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

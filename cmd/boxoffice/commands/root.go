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
	Use:   "boxoffice",
	Short: "French box-office millionaire movies pipeline",
	Long: `Boxoffice CLI

Fetches the CNC dataset of films with more than one million admissions
from data.gouv.fr, normalizes and aggregates it, and serves ranking
and insight views over HTTP.

Usage:
  go run ./cmd/boxoffice [command]

Examples:
  go run ./cmd/boxoffice serve
  go run ./cmd/boxoffice run
  go run ./cmd/boxoffice run --top 20`,
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

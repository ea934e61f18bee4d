package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Cross-sectional factor screener for US equities",
	Long: `Factor screener

Reconciles fundamentals across providers, derives earnings quality
metrics and ranks an index universe by composite factor z-scores.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen --index sp500 --top 50
  go run ./cmd/screener strategy show`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default from STRATEGY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

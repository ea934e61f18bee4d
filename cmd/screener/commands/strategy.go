package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/factorlab/screener/internal/factorconfig"
	"github.com/factorlab/screener/internal/scoring"
	"github.com/factorlab/screener/pkg/config"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Inspect and validate strategy files",
}

var strategyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved strategy and its hash",
	RunE:  runStrategyShow,
}

var strategyValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a strategy YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStrategyValidate,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyShowCmd)
	strategyCmd.AddCommand(strategyValidateCmd)
}

func runStrategyShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}

	strategy, _, err := factorconfig.Load(path)
	if err != nil {
		fmt.Printf("Strategy file %s unavailable (%v), showing built-in default\n\n", path, err)
		strategy = factorconfig.Default()
	}

	hash, err := factorconfig.Hash(strategy)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}

	fmt.Printf("Strategy: %s (version %s)\n", strategy.Meta.StrategyID, strategy.Meta.Version)
	fmt.Printf("Hash:     %s\n", hash)
	fmt.Printf("Horizon:  %d years, TTM over %d quarters\n\n",
		strategy.Earnings.HorizonYears, strategy.Earnings.TTMQuarters)

	for _, group := range strategy.Groups.All() {
		fmt.Printf("[%s]\n", group.Name)
		for _, metric := range group.Metrics {
			printMetric(metric)
		}
		fmt.Println()
	}

	return nil
}

func printMetric(metric scoring.MetricSpec) {
	if metric.Invert {
		fmt.Printf("  - %s (inverted)\n", metric.Name)
		return
	}
	fmt.Printf("  - %s\n", metric.Name)
}

func runStrategyValidate(cmd *cobra.Command, args []string) error {
	path := strategyFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.StrategyFile
	}

	strategy, _, err := factorconfig.Load(path)
	if err != nil {
		return fmt.Errorf("invalid strategy %s: %w", path, err)
	}

	hash, err := factorconfig.Hash(strategy)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}

	fmt.Printf("OK: %s (%s)\n", strategy.Meta.StrategyID, hash[:12])
	return nil
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/factorlab/screener/internal/earnings"
	"github.com/factorlab/screener/internal/external/alphavantage"
	"github.com/factorlab/screener/internal/external/slickcharts"
	"github.com/factorlab/screener/internal/external/yahoo"
	"github.com/factorlab/screener/internal/factorconfig"
	"github.com/factorlab/screener/internal/screener"
	"github.com/factorlab/screener/pkg/config"
	"github.com/factorlab/screener/pkg/httputil"
	"github.com/factorlab/screener/pkg/logger"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run a full screening pass over an index",
	Long: `Runs the screening pipeline end to end:

1. Fetch the index constituent list
2. Gather valuation ratios and statement fundamentals per ticker
3. Reconcile EPS and net income across providers
4. Derive TTM, growth variability and CAGR
5. Z-score and rank by composite

Example:
  go run ./cmd/screener screen --index sp500 --top 50
  go run ./cmd/screener screen --index nasdaq100 --out report.json`,
	RunE: runScreen,
}

var (
	// Flags
	screenIndex   string
	screenTop     int
	screenOut     string
	screenTickers []string
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenIndex, "index", "sp500", "index page to screen (sp500|nasdaq100|dowjones)")
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "limit to the top N constituents by weight (0 = all)")
	screenCmd.Flags().StringVar(&screenOut, "out", "", "write the JSON report to a file instead of stdout")
	screenCmd.Flags().StringSliceVar(&screenTickers, "tickers", nil, "screen an explicit ticker list instead of an index")
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	strategy, err := loadStrategy(cfg, log)
	if err != nil {
		return err
	}

	// One shared client per provider; Alpha Vantage gets its own because of
	// the rate limiter
	yahooHTTP := httputil.New(cfg, log)
	avHTTP := httputil.New(cfg, log)
	indexHTTP := httputil.New(cfg, log)

	yahooClient := yahoo.NewClient(cfg, yahooHTTP, log)
	avClient := alphavantage.NewClient(cfg, avHTTP, log)

	var universe screener.UniverseSource = slickcharts.NewClient(cfg, indexHTTP, log)
	index := screenIndex
	if len(screenTickers) > 0 {
		universe = screener.StaticUniverse(screenTickers)
		index = "custom"
	}

	reconciler := earnings.NewReconciler(yahooClient, avClient, log)
	s := screener.New(universe, yahooClient, reconciler, strategy, log)

	// Graceful shutdown on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := s.Run(ctx, index, screenTop)
	if err != nil {
		return fmt.Errorf("screening pass failed: %w", err)
	}

	return writeReport(report)
}

// loadStrategy resolves the strategy config: explicit flag first, then the
// configured file, then the built-in default.
func loadStrategy(cfg *config.Config, log *logger.Logger) (*factorconfig.Config, error) {
	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}

	strategy, _, err := factorconfig.Load(path)
	if err != nil {
		if strategyFile != "" {
			// An explicitly requested file must load
			return nil, fmt.Errorf("load strategy %s: %w", path, err)
		}
		log.WithError(err).WithField("path", path).Warn("Strategy file unavailable, using built-in default")
		strategy = factorconfig.Default()
	}

	hash, err := factorconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"strategy": strategy.Meta.StrategyID,
		"version":  strategy.Meta.Version,
		"hash":     hash[:12],
	}).Info("Strategy loaded")

	return strategy, nil
}

func writeReport(report *screener.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if screenOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(screenOut, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("Report written to %s (%d tickers)\n", screenOut, len(report.Results))
	return nil
}

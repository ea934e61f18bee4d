package logger_test

import (
	"github.com/factorlab/screener/pkg/config"
	"github.com/factorlab/screener/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Screening pass started")
	log.Warn("Secondary source returned no data")

	// Formatted logging
	log.Infof("Scored %d tickers", 500)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	tickerLog := log.WithFields(map[string]interface{}{
		"ticker":  "MSFT",
		"horizon": 5,
	})
	tickerLog.Info("Earnings reconciled")
}

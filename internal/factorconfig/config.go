package factorconfig

import (
	"github.com/factorlab/screener/internal/earnings"
	"github.com/factorlab/screener/internal/scoring"
)

// Config is the full factor screening strategy configuration.
// SSOT: metric sets and data-point thresholds live here, not in code.
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Earnings Earnings `yaml:"earnings" json:"earnings"`
	Groups   Groups   `yaml:"groups" json:"groups"`
}

// Meta identifies the strategy
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Earnings holds reconciliation and derived-metric thresholds
type Earnings struct {
	// HorizonYears is the number of annual periods requested during
	// source reconciliation
	HorizonYears int `yaml:"horizon_years" json:"horizon_years"`

	TTMQuarters          int `yaml:"ttm_quarters" json:"ttm_quarters"`
	MinGrowthPoints      int `yaml:"min_growth_points" json:"min_growth_points"`
	MinVariabilityPoints int `yaml:"min_variability_points" json:"min_variability_points"`
}

// DeriveConfig converts the thresholds into the earnings package config
func (e Earnings) DeriveConfig() earnings.Config {
	return earnings.Config{
		TTMQuarters:          e.TTMQuarters,
		MinGrowthPoints:      e.MinGrowthPoints,
		MinVariabilityPoints: e.MinVariabilityPoints,
	}
}

// Groups are the three composite metric groups. Each group's metric set is
// pluggable; the scoring aggregator never hardcodes field names.
type Groups struct {
	Value         scoring.Group `yaml:"value" json:"value"`
	Profitability scoring.Group `yaml:"profitability" json:"profitability"`
	Growth        scoring.Group `yaml:"growth" json:"growth"`
}

// All returns the groups in scoring order
func (g Groups) All() []scoring.Group {
	return []scoring.Group{g.Value, g.Profitability, g.Growth}
}

// Default returns the shipped quality/value strategy: MSCI-style valuation
// ratios (inverted, lower is better) plus the Asness-Frazzini-Pedersen
// profitability measures and their five-year growth deltas.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "quality_value_v1",
			Version:    "1.0",
		},
		Earnings: Earnings{
			HorizonYears:         5,
			TTMQuarters:          4,
			MinGrowthPoints:      2,
			MinVariabilityPoints: 2,
		},
		Groups: Groups{
			Value: scoring.Group{
				Name: "value",
				Metrics: []scoring.MetricSpec{
					{Name: "pe_trailing", Invert: true},
					{Name: "pe_forward", Invert: true},
					{Name: "ebit_to_tev"},
					{Name: "pb_ratio", Invert: true},
				},
			},
			Profitability: scoring.Group{
				Name: "profitability",
				Metrics: []scoring.MetricSpec{
					{Name: "gpoa_ttm"},
					{Name: "roe_ttm"},
					{Name: "roa_ttm"},
					{Name: "cfoa"},
					{Name: "gpmar_ttm"},
				},
			},
			Growth: scoring.Group{
				Name: "growth",
				Metrics: []scoring.MetricSpec{
					{Name: "gpoa_growth"},
					{Name: "roe_growth"},
					{Name: "roa_growth"},
					{Name: "cfoa_growth"},
					{Name: "gpmar_growth"},
				},
			},
		},
	}
}

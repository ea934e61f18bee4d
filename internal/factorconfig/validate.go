package factorconfig

import (
	"fmt"

	"github.com/factorlab/screener/internal/scoring"
)

// ValidationError is a constraint violation that stops the program
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Earnings ===
	if cfg.Earnings.HorizonYears < 2 {
		return ValidationError{"earnings.horizon_years", "must be >= 2"}
	}
	if cfg.Earnings.TTMQuarters < 1 {
		return ValidationError{"earnings.ttm_quarters", "must be >= 1"}
	}
	if cfg.Earnings.MinGrowthPoints < 2 {
		return ValidationError{"earnings.min_growth_points", "must be >= 2"}
	}
	if cfg.Earnings.MinVariabilityPoints < 2 {
		return ValidationError{"earnings.min_variability_points", "must be >= 2"}
	}

	// === Groups ===
	for _, group := range cfg.Groups.All() {
		if err := validateGroup(group); err != nil {
			return err
		}
	}

	return nil
}

func validateGroup(group scoring.Group) error {
	field := fmt.Sprintf("groups.%s", group.Name)

	if group.Name == "" {
		return ValidationError{"groups", "group name is required"}
	}
	if len(group.Metrics) == 0 {
		return ValidationError{field, "at least one metric is required"}
	}

	seen := make(map[string]bool, len(group.Metrics))
	for _, metric := range group.Metrics {
		if metric.Name == "" {
			return ValidationError{field, "metric name is required"}
		}
		if seen[metric.Name] {
			return ValidationError{field, fmt.Sprintf("duplicate metric %q", metric.Name)}
		}
		seen[metric.Name] = true
	}

	return nil
}

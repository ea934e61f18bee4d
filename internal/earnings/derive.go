package earnings

import (
	"fmt"
	"math"

	"github.com/factorlab/screener/internal/contracts"
)

// Config holds the minimum data-point thresholds for derived metrics.
// Injected into each operation so deployments can tune them and tests can
// exercise boundaries in isolation.
type Config struct {
	// TTMQuarters is the number of most recent quarters summed for
	// trailing-twelve-month values
	TTMQuarters int

	// MinGrowthPoints is the minimum series length for a YoY growth series
	MinGrowthPoints int

	// MinVariabilityPoints is the minimum number of growth observations
	// for the variability calculation
	MinVariabilityPoints int
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		TTMQuarters:          4,
		MinGrowthPoints:      2,
		MinVariabilityPoints: 2,
	}
}

// DerivedMetrics holds everything derived from one reconciled series for one
// ticker. Computed once per analysis run, never mutated afterwards.
type DerivedMetrics struct {
	Series      contracts.ReconciledSeries `json:"series"`
	Growth      []float64                  `json:"growth"`      // YoY growth, length = len(series) - 1
	Variability float64                    `json:"variability"` // stddev of YoY growth
	CAGR        float64                    `json:"cagr"`
}

// TTM sums the most recent valid quarterly observations into a
// trailing-twelve-month value.
func TTM(ticker string, quarterly []float64, domain Domain, cfg Config) (float64, error) {
	valid := dropNaN(quarterly)

	if len(valid) < cfg.TTMQuarters {
		return 0, insufficientDataf(domain, ticker,
			"need %d quarters of data, have %d", cfg.TTMQuarters, len(valid))
	}

	sum := 0.0
	for _, v := range valid[:cfg.TTMQuarters] {
		sum += v
	}

	return sum, nil
}

// GrowthSeries computes year-over-year growth for a most-recent-first series:
//
//	growth_i = (value_i - value_{i+1}) / abs(value_{i+1})
//
// The denominator uses the magnitude on purpose. With a signed denominator a
// swing from a negative prior value to a positive current one would come out
// as negative growth; the absolute value keeps the sign of the improvement.
// Output has length len(values) - 1, same ordering.
func GrowthSeries(ticker string, values []float64, cfg Config) ([]float64, error) {
	if len(values) < cfg.MinGrowthPoints {
		return nil, insufficientDataf(DomainGrowth, ticker,
			"need at least %d periods, have %d", cfg.MinGrowthPoints, len(values))
	}

	growths := make([]float64, 0, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		prior := values[i+1]
		if prior == 0 {
			return nil, computationFailure(DomainGrowth, ticker,
				fmt.Errorf("zero prior-period value at index %d", i+1))
		}

		growth := (values[i] - prior) / math.Abs(prior)
		if math.IsNaN(growth) || math.IsInf(growth, 0) {
			return nil, computationFailure(DomainGrowth, ticker,
				fmt.Errorf("non-finite growth at index %d", i))
		}

		growths = append(growths, growth)
	}

	return growths, nil
}

// Variability computes EVAR, the standard deviation of a YoY growth series:
//
//	EVAR = sqrt( sum((g_i - mean(g))^2) / (n - 1) )
//
// The (n-1) divisor is the literal behavior being replicated; do not swap it
// for the population variant.
func Variability(ticker string, growths []float64, cfg Config) (float64, error) {
	if len(growths) < cfg.MinVariabilityPoints {
		return 0, insufficientDataf(DomainVariability, ticker,
			"need at least %d growth data points, have %d", cfg.MinVariabilityPoints, len(growths))
	}

	mean := 0.0
	for _, g := range growths {
		mean += g
	}
	mean /= float64(len(growths))

	sumSquares := 0.0
	for _, g := range growths {
		diff := g - mean
		sumSquares += diff * diff
	}

	variance := sumSquares / float64(len(growths)-1)
	evar := math.Sqrt(variance)

	if math.IsNaN(evar) || math.IsInf(evar, 0) {
		return 0, computationFailure(DomainVariability, ticker,
			fmt.Errorf("non-finite variability from %d growth points", len(growths)))
	}

	return evar, nil
}

// CAGR computes the compound annual growth rate from the latest and earliest
// values of a most-recent-first series over the elapsed period count.
func CAGR(ticker string, values []float64, domain Domain) (float64, error) {
	if len(values) < 2 {
		return 0, insufficientDataf(domain, ticker,
			"need at least 2 periods for CAGR, have %d", len(values))
	}

	latest := values[0]
	earliest := values[len(values)-1]
	periods := float64(len(values) - 1)

	if earliest == 0 {
		return 0, computationFailure(domain, ticker,
			fmt.Errorf("zero earliest value, cannot compound"))
	}

	ratio := latest / earliest
	if ratio < 0 {
		// Sign flip across the horizon; a real root does not exist
		return 0, computationFailure(domain, ticker,
			fmt.Errorf("negative latest/earliest ratio %.4f", ratio))
	}

	cagr := math.Pow(ratio, 1/periods) - 1
	if math.IsNaN(cagr) || math.IsInf(cagr, 0) {
		return 0, computationFailure(domain, ticker,
			fmt.Errorf("non-finite CAGR from ratio %.4f over %.0f periods", ratio, periods))
	}

	return cagr, nil
}

// Derive computes the full set of derived metrics from a reconciled series.
// The individual operations stay independently callable; this is only a
// convenience composition for callers that want all of them.
func Derive(series contracts.ReconciledSeries, cfg Config) (*DerivedMetrics, error) {
	domain := domainForField(series.Field)

	growth, err := GrowthSeries(series.Ticker, series.Values, cfg)
	if err != nil {
		return nil, err
	}

	variability, err := Variability(series.Ticker, growth, cfg)
	if err != nil {
		return nil, err
	}

	cagr, err := CAGR(series.Ticker, series.Values, domain)
	if err != nil {
		return nil, err
	}

	return &DerivedMetrics{
		Series:      series,
		Growth:      growth,
		Variability: variability,
		CAGR:        cagr,
	}, nil
}

// dropNaN returns the valid observations, order preserved
func dropNaN(values []float64) []float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	return valid
}

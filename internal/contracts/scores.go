package contracts

import "math"

// MetricDetail holds the raw value and z-score per sub-metric for one ticker.
// Kept alongside the composite for auditability.
type MetricDetail struct {
	Raw     map[string]float64 `json:"raw"`
	ZScores map[string]float64 `json:"zscores"`
}

// ZScoreResult is the authoritative output of one metric group for one
// ticker: the composite score plus per-metric detail. Immutable once produced.
type ZScoreResult struct {
	Composite float64      `json:"composite"`
	Detail    MetricDetail `json:"detail"`
}

// HasSignal reports whether the composite carries any signal at all.
// A ticker whose every sub-metric was NaN composites to NaN.
func (r ZScoreResult) HasSignal() bool {
	return !math.IsNaN(r.Composite)
}

// ScoreSet holds the results of one scoring pass for one metric group
// across the whole universe.
type ScoreSet struct {
	Group   string                  `json:"group"`
	Results map[string]ZScoreResult `json:"results"` // key: ticker
}

// Get returns the result for a ticker
func (s *ScoreSet) Get(ticker string) (ZScoreResult, bool) {
	r, ok := s.Results[ticker]
	return r, ok
}

// Count returns the number of scored tickers
func (s *ScoreSet) Count() int {
	return len(s.Results)
}

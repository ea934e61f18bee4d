package contracts

import (
	"context"
	"errors"
	"math"
)

// Periodicity of a fundamental time series.
type Periodicity string

const (
	Quarterly Periodicity = "quarterly"
	Annual    Periodicity = "annual"
)

// Field names a fundamental income-statement line item.
type Field string

const (
	FieldBasicEPS  Field = "Basic EPS"
	FieldNetIncome Field = "Net Income"
)

// Sentinel errors for source capabilities.
// ErrUnsupportedField means the field is absent from the source's schema;
// ErrNoData means the source responded but had nothing for the ticker.
var (
	ErrUnsupportedField = errors.New("field not available in source schema")
	ErrNoData           = errors.New("no data available from source")
)

// FundamentalSource supplies raw per-ticker time series for a named field.
// Implementations must return values most-recent-first.
type FundamentalSource interface {
	Name() string
	Fetch(ctx context.Context, ticker string, field Field, periodicity Periodicity) ([]float64, error)
}

// FundamentalSeries is an ordered sequence of observations for one ticker,
// one field, one periodicity. Values are most-recent-first.
type FundamentalSeries struct {
	Ticker      string      `json:"ticker"`
	Field       Field       `json:"field"`
	Periodicity Periodicity `json:"periodicity"`
	Values      []float64   `json:"values"`
}

// Clean returns a copy of the series with NaN observations dropped.
// Missing values are removed, never imputed.
func (s FundamentalSeries) Clean() FundamentalSeries {
	cleaned := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			cleaned = append(cleaned, v)
		}
	}

	return FundamentalSeries{
		Ticker:      s.Ticker,
		Field:       s.Field,
		Periodicity: s.Periodicity,
		Values:      cleaned,
	}
}

// Len returns the number of observations
func (s FundamentalSeries) Len() int {
	return len(s.Values)
}

// ReconciledSeries is the authoritative series chosen between a primary and
// a secondary source for a requested horizon. Length is at most the horizon,
// ordering stays most-recent-first, and the value is immutable once built.
type ReconciledSeries struct {
	FundamentalSeries

	// Source is the name of the source that won the reconciliation
	Source string `json:"source"`
}

// FactorSnapshot maps metric names to one raw scalar value for a ticker.
// It is resolved once per ticker before normalization so the scoring logic
// never reaches into provider-specific structures. A missing metric reads
// as NaN.
type FactorSnapshot struct {
	Ticker  string             `json:"ticker"`
	Company string             `json:"company,omitempty"`
	Weight  float64            `json:"weight,omitempty"`
	Metrics map[string]float64 `json:"metrics"`
}

// NewFactorSnapshot creates an empty snapshot for a ticker
func NewFactorSnapshot(ticker string) *FactorSnapshot {
	return &FactorSnapshot{
		Ticker:  ticker,
		Metrics: make(map[string]float64),
	}
}

// Metric returns the raw value for a metric name, NaN if absent.
func (s *FactorSnapshot) Metric(name string) float64 {
	v, ok := s.Metrics[name]
	if !ok {
		return math.NaN()
	}
	return v
}

// SetMetric records a raw metric value
func (s *FactorSnapshot) SetMetric(name string, value float64) {
	s.Metrics[name] = value
}

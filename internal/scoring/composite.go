package scoring

import (
	"math"

	"github.com/factorlab/screener/internal/contracts"
)

// MetricSpec names one sub-metric of a scoring group. Invert marks metrics
// where a smaller raw value ranks more favorably (valuation ratios); the
// flag is configuration of the metric, not of the algorithm.
type MetricSpec struct {
	Name   string `yaml:"name" json:"name"`
	Invert bool   `yaml:"invert" json:"invert"`
}

// Group is a named set of sub-metrics scored together into one composite.
// The metric set is data; the aggregator never hardcodes field names.
type Group struct {
	Name    string       `yaml:"name" json:"name"`
	Metrics []MetricSpec `yaml:"metrics" json:"metrics"`
}

// Score runs one cross-sectional scoring pass for the group over the whole
// universe. For every ticker it averages the available (non-NaN) sub-metric
// z-scores; a ticker with no valid sub-metric at all composites to NaN.
// The result also carries the raw value and z-score per sub-metric.
func (g Group) Score(snapshots []*contracts.FactorSnapshot) *contracts.ScoreSet {
	n := len(snapshots)

	// Materialize one column per metric across the universe
	rawColumns := make([][]float64, len(g.Metrics))
	zColumns := make([][]float64, len(g.Metrics))

	for m, metric := range g.Metrics {
		column := make([]float64, n)
		for i, snapshot := range snapshots {
			column[i] = snapshot.Metric(metric.Name)
		}
		rawColumns[m] = column

		if metric.Invert {
			zColumns[m] = ZScore(Invert(column))
		} else {
			zColumns[m] = ZScore(column)
		}
	}

	results := make(map[string]contracts.ZScoreResult, n)
	for i, snapshot := range snapshots {
		raw := make(map[string]float64, len(g.Metrics))
		zscores := make(map[string]float64, len(g.Metrics))

		zs := make([]float64, len(g.Metrics))
		for m, metric := range g.Metrics {
			raw[metric.Name] = rawColumns[m][i]
			zs[m] = zColumns[m][i]
			zscores[metric.Name] = zs[m]
		}

		composite := NaNMean(zs)

		results[snapshot.Ticker] = contracts.ZScoreResult{
			Composite: composite,
			Detail: contracts.MetricDetail{
				Raw:     raw,
				ZScores: zscores,
			},
		}
	}

	return &contracts.ScoreSet{
		Group:   g.Name,
		Results: results,
	}
}

// NaNMean averages the available values, ignoring NaN entries entirely
// rather than treating them as zero. All-NaN input means NaN out.
func NaNMean(values []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}

	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

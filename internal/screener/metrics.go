package screener

import (
	"math"

	"github.com/factorlab/screener/internal/contracts"
	"github.com/factorlab/screener/internal/external/yahoo"
)

// valuationMetrics records the market-price ratios on the snapshot
func valuationMetrics(snapshot *contracts.FactorSnapshot, val *yahoo.Valuation) {
	if val == nil {
		return
	}
	snapshot.SetMetric("pe_trailing", val.TrailingPE)
	snapshot.SetMetric("pe_forward", val.ForwardPE)
	snapshot.SetMetric("pb_ratio", val.PriceToBook)
}

// profitabilityMetrics records the scaled statement ratios for the latest
// fiscal year. All are numerator over a balance-sheet or revenue base, so a
// missing or zero base yields NaN and the metric is skipped downstream.
func profitabilityMetrics(snapshot *contracts.FactorSnapshot, stmts *yahoo.Statements, val *yahoo.Valuation) {
	if stmts == nil {
		return
	}

	snapshot.SetMetric("gpoa_ttm", ratio(at(stmts.GrossProfit, 0), at(stmts.TotalAssets, 0)))
	snapshot.SetMetric("roe_ttm", ratio(at(stmts.NetIncome, 0), at(stmts.StockholdersEquity, 0)))
	snapshot.SetMetric("roa_ttm", ratio(at(stmts.NetIncome, 0), at(stmts.TotalAssets, 0)))
	snapshot.SetMetric("cfoa", ratio(at(stmts.OperatingCashFlow, 0), at(stmts.TotalAssets, 0)))
	snapshot.SetMetric("gpmar_ttm", ratio(at(stmts.GrossProfit, 0), at(stmts.TotalRevenue, 0)))

	if val != nil {
		snapshot.SetMetric("ebit_to_tev", ratio(at(stmts.EBIT, 0), val.EnterpriseValue))
	}
}

// growthMetrics records the change in each profitability numerator over the
// horizon, scaled by the lagged base. When the series is shorter than the
// horizon the earliest available year is the lag.
func growthMetrics(snapshot *contracts.FactorSnapshot, stmts *yahoo.Statements, horizonYears int) {
	if stmts == nil {
		return
	}

	snapshot.SetMetric("gpoa_growth",
		growthDelta(stmts.GrossProfit, stmts.TotalAssets, horizonYears))
	snapshot.SetMetric("roe_growth",
		growthDelta(stmts.NetIncome, stmts.StockholdersEquity, horizonYears))
	snapshot.SetMetric("roa_growth",
		growthDelta(stmts.NetIncome, stmts.TotalAssets, horizonYears))
	snapshot.SetMetric("cfoa_growth",
		growthDelta(stmts.OperatingCashFlow, stmts.TotalAssets, horizonYears))
	snapshot.SetMetric("gpmar_growth",
		growthDelta(stmts.GrossProfit, stmts.TotalRevenue, horizonYears))
}

// growthDelta is (numerator_now - numerator_lagged) / base_lagged for
// most-recent-first series.
func growthDelta(numerator, base []float64, horizonYears int) float64 {
	lag := horizonYears
	if max := len(numerator) - 1; lag > max {
		lag = max
	}
	if baseMax := len(base) - 1; lag > baseMax {
		lag = baseMax
	}
	if lag < 1 {
		return math.NaN()
	}

	return ratio(at(numerator, 0)-at(numerator, lag), at(base, lag))
}

// at returns series[i] or NaN when out of range
func at(series []float64, i int) float64 {
	if i < 0 || i >= len(series) {
		return math.NaN()
	}
	return series[i]
}

// ratio divides, mapping a zero or non-finite denominator to NaN
func ratio(numerator, denominator float64) float64 {
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return math.NaN()
	}
	v := numerator / denominator
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

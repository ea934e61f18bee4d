package screener

import (
	"context"

	"github.com/factorlab/screener/internal/contracts"
	"github.com/factorlab/screener/internal/earnings"
)

// earningsMetrics runs reconciliation and the derived-metric pipeline for
// one ticker and records the results on the snapshot. Failures downgrade to
// a warning and a missing metric; one bad ticker never aborts the pass.
func (s *Screener) earningsMetrics(ctx context.Context, snapshot *contracts.FactorSnapshot) string {
	ticker := snapshot.Ticker
	deriveCfg := s.strategy.Earnings.DeriveConfig()
	source := ""

	// TTM EPS needs the quarterly series
	quarterly, err := s.reconciler.Reconcile(ctx, ticker,
		contracts.FieldBasicEPS, contracts.Quarterly, deriveCfg.TTMQuarters)
	if err != nil {
		s.warnMetric(ticker, "eps_ttm", err)
	} else {
		ttm, err := earnings.TTM(ticker, quarterly.Values, earnings.DomainEPS, deriveCfg)
		if err != nil {
			s.warnMetric(ticker, "eps_ttm", err)
		} else {
			snapshot.SetMetric("eps_ttm", ttm)
		}
	}

	// Annual EPS drives growth variability and CAGR
	annualEPS, err := s.reconciler.Reconcile(ctx, ticker,
		contracts.FieldBasicEPS, contracts.Annual, s.strategy.Earnings.HorizonYears)
	if err != nil {
		s.warnMetric(ticker, "eps_variability", err)
	} else {
		source = annualEPS.Source
		if derived, err := earnings.Derive(annualEPS, deriveCfg); err != nil {
			s.warnMetric(ticker, "eps_variability", err)
		} else {
			snapshot.SetMetric("eps_variability", derived.Variability)
			snapshot.SetMetric("eps_cagr", derived.CAGR)
		}
	}

	// Net income gets the same treatment
	annualNI, err := s.reconciler.Reconcile(ctx, ticker,
		contracts.FieldNetIncome, contracts.Annual, s.strategy.Earnings.HorizonYears)
	if err != nil {
		s.warnMetric(ticker, "net_income_variability", err)
	} else {
		if derived, err := earnings.Derive(annualNI, deriveCfg); err != nil {
			s.warnMetric(ticker, "net_income_variability", err)
		} else {
			snapshot.SetMetric("net_income_variability", derived.Variability)
			snapshot.SetMetric("net_income_cagr", derived.CAGR)
		}
	}

	return source
}

// buildSnapshot gathers every raw factor input for one ticker
func (s *Screener) buildSnapshot(ctx context.Context, ticker, company string, weight float64) (*contracts.FactorSnapshot, string) {
	snapshot := contracts.NewFactorSnapshot(ticker)
	snapshot.Company = company
	snapshot.Weight = weight

	valuation, err := s.market.FetchValuation(ctx, ticker)
	if err != nil {
		s.warnMetric(ticker, "valuation", err)
		valuation = nil
	}

	statements, err := s.market.FetchStatements(ctx, ticker)
	if err != nil {
		s.warnMetric(ticker, "statements", err)
		statements = nil
	}

	valuationMetrics(snapshot, valuation)
	profitabilityMetrics(snapshot, statements, valuation)
	growthMetrics(snapshot, statements, s.strategy.Earnings.HorizonYears)

	source := s.earningsMetrics(ctx, snapshot)

	return snapshot, source
}

func (s *Screener) warnMetric(ticker, metric string, err error) {
	s.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"metric": metric,
	}).WithError(err).Warn("Factor input unavailable")
}

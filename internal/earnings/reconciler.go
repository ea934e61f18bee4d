package earnings

import (
	"context"
	"errors"
	"fmt"

	"github.com/factorlab/screener/internal/contracts"
	"github.com/factorlab/screener/pkg/logger"
)

// Reconciler merges conflicting fundamental time series from a primary and
// a secondary data provider into one authoritative series per ticker.
// SSOT: source-preference resolution happens here and nowhere else.
type Reconciler struct {
	primary   contracts.FundamentalSource
	secondary contracts.FundamentalSource
	logger    *logger.Logger
}

// NewReconciler creates a new reconciler over two fundamental sources
func NewReconciler(primary, secondary contracts.FundamentalSource, log *logger.Logger) *Reconciler {
	return &Reconciler{
		primary:   primary,
		secondary: secondary,
		logger:    log,
	}
}

// Reconcile produces a series of up to horizon periods for one ticker and
// field, most-recent-first. Precedence:
//
//  1. Primary has >= horizon valid observations: its first horizon values win
//     and the secondary source is never consulted.
//  2. Otherwise the secondary source is queried for the same field and
//     periodicity.
//  3. Secondary returns nothing: the primary series is returned unmodified.
//     This degraded at-least-something fallback is a business rule, not an
//     error, and is the only place missing data is tolerated silently.
//  4. Secondary has strictly more valid observations than the primary: its
//     first horizon values win (all of it when shorter than horizon).
//  5. Otherwise the primary series is returned unmodified.
func (r *Reconciler) Reconcile(ctx context.Context, ticker string, field contracts.Field, periodicity contracts.Periodicity, horizon int) (contracts.ReconciledSeries, error) {
	domain := domainForField(field)

	primaryValues, err := r.primary.Fetch(ctx, ticker, field, periodicity)
	if err != nil {
		switch {
		case errors.Is(err, contracts.ErrUnsupportedField):
			return contracts.ReconciledSeries{}, missingField(domain, ticker, field, r.primary.Name())
		case errors.Is(err, contracts.ErrNoData):
			// An empty primary is just a series shorter than the horizon;
			// the secondary still gets its chance below
			primaryValues = nil
		default:
			return contracts.ReconciledSeries{}, &CalcError{
				Domain: domain,
				Kind:   KindComputationFailure,
				Ticker: ticker,
				Err:    fmt.Errorf("fetch from %s: %w", r.primary.Name(), err),
			}
		}
	}

	primary := contracts.FundamentalSeries{
		Ticker:      ticker,
		Field:       field,
		Periodicity: periodicity,
		Values:      primaryValues,
	}.Clean()

	// Step 1: primary alone satisfies the horizon
	if primary.Len() >= horizon {
		return truncated(primary, horizon, r.primary.Name()), nil
	}

	// Step 2: consult the secondary source
	secondaryValues, err := r.secondary.Fetch(ctx, ticker, field, periodicity)
	if err != nil || len(secondaryValues) == 0 {
		// Step 3: degraded result, keep whatever the primary had
		r.logger.WithFields(map[string]interface{}{
			"ticker":  ticker,
			"field":   string(field),
			"horizon": horizon,
			"have":    primary.Len(),
			"source":  r.secondary.Name(),
		}).Warn("Secondary source returned no data, keeping primary series")

		return truncated(primary, primary.Len(), r.primary.Name()), nil
	}

	secondary := contracts.FundamentalSeries{
		Ticker:      ticker,
		Field:       field,
		Periodicity: periodicity,
		Values:      secondaryValues,
	}.Clean()

	// Step 4: prefer the secondary only when it is strictly larger
	if secondary.Len() > primary.Len() {
		n := secondary.Len()
		if n > horizon {
			n = horizon
		}

		r.logger.WithFields(map[string]interface{}{
			"ticker":    ticker,
			"field":     string(field),
			"primary":   primary.Len(),
			"secondary": secondary.Len(),
		}).Debug("Secondary source preferred for reconciliation")

		return truncated(secondary, n, r.secondary.Name()), nil
	}

	// Step 5: secondary is not strictly larger, keep the primary
	return truncated(primary, primary.Len(), r.primary.Name()), nil
}

// truncated builds an immutable reconciled series from the first n values
func truncated(series contracts.FundamentalSeries, n int, source string) contracts.ReconciledSeries {
	if n > series.Len() {
		n = series.Len()
	}

	values := make([]float64, n)
	copy(values, series.Values[:n])

	return contracts.ReconciledSeries{
		FundamentalSeries: contracts.FundamentalSeries{
			Ticker:      series.Ticker,
			Field:       series.Field,
			Periodicity: series.Periodicity,
			Values:      values,
		},
		Source: source,
	}
}

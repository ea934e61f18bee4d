package screener

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/factorlab/screener/internal/contracts"
	"github.com/factorlab/screener/internal/earnings"
	"github.com/factorlab/screener/internal/external/slickcharts"
	"github.com/factorlab/screener/internal/external/yahoo"
	"github.com/factorlab/screener/internal/factorconfig"
	"github.com/factorlab/screener/internal/scoring"
	"github.com/factorlab/screener/pkg/logger"
)

// MarketData supplies per-ticker valuation and statement inputs
type MarketData interface {
	FetchValuation(ctx context.Context, ticker string) (*yahoo.Valuation, error)
	FetchStatements(ctx context.Context, ticker string) (*yahoo.Statements, error)
}

// UniverseSource supplies the index membership to screen
type UniverseSource interface {
	Constituents(ctx context.Context, index string) ([]slickcharts.Constituent, error)
}

// StaticUniverse serves a fixed ticker list as the screening universe,
// bypassing the index scrape.
type StaticUniverse []string

// Constituents implements UniverseSource
func (u StaticUniverse) Constituents(ctx context.Context, index string) ([]slickcharts.Constituent, error) {
	if len(u) == 0 {
		return nil, fmt.Errorf("empty ticker list")
	}
	members := make([]slickcharts.Constituent, len(u))
	for i, ticker := range u {
		members[i] = slickcharts.Constituent{Rank: i + 1, Symbol: ticker}
	}
	return members, nil
}

// Screener runs a full factor screening pass over an index universe.
// SSOT: pass orchestration lives here; the stages stay independently testable.
type Screener struct {
	universe   UniverseSource
	market     MarketData
	reconciler *earnings.Reconciler
	strategy   *factorconfig.Config
	logger     *logger.Logger
}

// New creates a screener over the given universe, market data and strategy
func New(universe UniverseSource, market MarketData, reconciler *earnings.Reconciler, strategy *factorconfig.Config, log *logger.Logger) *Screener {
	return &Screener{
		universe:   universe,
		market:     market,
		reconciler: reconciler,
		strategy:   strategy,
		logger:     log,
	}
}

// Run screens up to limit constituents of the index and returns the ranked
// report. limit <= 0 means the whole universe. Individual ticker failures
// are logged and surface as missing metrics, never as a pass failure.
func (s *Screener) Run(ctx context.Context, index string, limit int) (*Report, error) {
	startTime := time.Now()

	members, err := s.universe.Constituents(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("fetch universe %q: %w", index, err)
	}
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}

	s.logger.WithFields(map[string]interface{}{
		"index":    index,
		"universe": len(members),
		"strategy": s.strategy.Meta.StrategyID,
	}).Info("Screening pass started")

	snapshots := make([]*contracts.FactorSnapshot, 0, len(members))
	sources := make(map[string]string, len(members))
	for _, member := range members {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		snapshot, source := s.buildSnapshot(ctx, member.Symbol, member.Company, member.Weight)
		snapshots = append(snapshots, snapshot)
		sources[member.Symbol] = source
	}

	// Cross-sectional scoring needs the whole universe at once
	scoreSets := make([]*contracts.ScoreSet, 0, 3)
	for _, group := range s.strategy.Groups.All() {
		scoreSets = append(scoreSets, group.Score(snapshots))
	}

	report := s.assemble(index, snapshots, scoreSets, sources)

	s.logger.WithFields(map[string]interface{}{
		"index":    index,
		"scored":   len(report.Results),
		"duration": time.Since(startTime),
	}).Info("Screening pass completed")

	return report, nil
}

// assemble merges the group score sets into ranked per-ticker results
func (s *Screener) assemble(index string, snapshots []*contracts.FactorSnapshot, scoreSets []*contracts.ScoreSet, sources map[string]string) *Report {
	results := make([]Result, 0, len(snapshots))

	for _, snapshot := range snapshots {
		groups := make(map[string]Float, len(scoreSets))
		composites := make([]float64, 0, len(scoreSets))
		for _, set := range scoreSets {
			r, ok := set.Get(snapshot.Ticker)
			if !ok {
				continue
			}
			groups[set.Group] = Float(r.Composite)
			composites = append(composites, r.Composite)
		}

		metrics := make(map[string]Float, len(snapshot.Metrics))
		for name, v := range snapshot.Metrics {
			metrics[name] = Float(v)
		}

		results = append(results, Result{
			Ticker:    snapshot.Ticker,
			Company:   snapshot.Company,
			Weight:    snapshot.Weight,
			Composite: Float(scoring.NaNMean(composites)),
			Groups:    groups,
			Metrics:   metrics,
			EPSSource: sources[snapshot.Ticker],
		})
	}

	// Rank by composite descending, signal-less tickers last, ties by ticker
	// so the ordering is reproducible
	sort.SliceStable(results, func(i, j int) bool {
		a, b := float64(results[i].Composite), float64(results[j].Composite)
		switch {
		case math.IsNaN(a) && math.IsNaN(b):
			return results[i].Ticker < results[j].Ticker
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		case a != b:
			return a > b
		default:
			return results[i].Ticker < results[j].Ticker
		}
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	hash, err := factorconfig.Hash(s.strategy)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to hash strategy config")
		hash = ""
	}

	return &Report{
		StrategyID:   s.strategy.Meta.StrategyID,
		StrategyHash: hash,
		Index:        index,
		GeneratedAt:  time.Now().UTC(),
		Universe:     len(snapshots),
		Results:      results,
	}
}

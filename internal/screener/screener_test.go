package screener

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorlab/screener/internal/contracts"
	"github.com/factorlab/screener/internal/earnings"
	"github.com/factorlab/screener/internal/external/slickcharts"
	"github.com/factorlab/screener/internal/external/yahoo"
	"github.com/factorlab/screener/internal/factorconfig"
	"github.com/factorlab/screener/pkg/config"
	"github.com/factorlab/screener/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error"})
}

type stubUniverse struct {
	members []slickcharts.Constituent
	err     error
}

func (s *stubUniverse) Constituents(ctx context.Context, index string) ([]slickcharts.Constituent, error) {
	return s.members, s.err
}

type stubMarket struct {
	valuations map[string]*yahoo.Valuation
	statements map[string]*yahoo.Statements
}

func (s *stubMarket) FetchValuation(ctx context.Context, ticker string) (*yahoo.Valuation, error) {
	v, ok := s.valuations[ticker]
	if !ok {
		return nil, errors.New("valuation unavailable")
	}
	return v, nil
}

func (s *stubMarket) FetchStatements(ctx context.Context, ticker string) (*yahoo.Statements, error) {
	v, ok := s.statements[ticker]
	if !ok {
		return nil, errors.New("statements unavailable")
	}
	return v, nil
}

type stubFundamentals struct {
	name   string
	series map[string][]float64 // key: ticker
}

func (s *stubFundamentals) Name() string { return s.name }

func (s *stubFundamentals) Fetch(ctx context.Context, ticker string, field contracts.Field, periodicity contracts.Periodicity) ([]float64, error) {
	values, ok := s.series[ticker]
	if !ok {
		return nil, contracts.ErrNoData
	}
	return values, nil
}

func statements(scale float64) *yahoo.Statements {
	return &yahoo.Statements{
		GrossProfit:        []float64{150 * scale, 140, 130, 120, 110, 100},
		TotalRevenue:       []float64{500, 490, 480, 470, 460, 450},
		NetIncome:          []float64{80 * scale, 75, 70, 65, 60, 55},
		EBIT:               []float64{100 * scale, 95, 90, 85, 80, 75},
		TotalAssets:        []float64{400, 395, 390, 385, 380, 375},
		StockholdersEquity: []float64{200, 195, 190, 185, 180, 175},
		OperatingCashFlow:  []float64{90 * scale, 85, 80, 75, 70, 65},
	}
}

func newTestScreener(universe *stubUniverse, market *stubMarket) *Screener {
	log := testLogger()
	primary := &stubFundamentals{name: "yahoo", series: map[string][]float64{
		"AAA": {6.0, 5.5, 5.0, 4.5, 4.0},
		"BBB": {3.0, 2.9, 2.8, 2.7, 2.6},
		"CCC": {1.0, 1.1, 0.9, 1.0, 0.8},
	}}
	secondary := &stubFundamentals{name: "alphavantage", series: map[string][]float64{}}
	reconciler := earnings.NewReconciler(primary, secondary, log)

	return New(universe, market, reconciler, factorconfig.Default(), log)
}

func TestRun_RanksByComposite(t *testing.T) {
	universe := &stubUniverse{members: []slickcharts.Constituent{
		{Rank: 1, Company: "Alpha Corp", Symbol: "AAA", Weight: 5.0},
		{Rank: 2, Company: "Beta Inc", Symbol: "BBB", Weight: 3.0},
		{Rank: 3, Company: "Gamma Ltd", Symbol: "CCC", Weight: 1.0},
	}}
	market := &stubMarket{
		valuations: map[string]*yahoo.Valuation{
			// AAA is the cheapest and most profitable
			"AAA": {TrailingPE: 10, ForwardPE: 9, PriceToBook: 2, EnterpriseValue: 1000},
			"BBB": {TrailingPE: 20, ForwardPE: 18, PriceToBook: 5, EnterpriseValue: 1000},
			"CCC": {TrailingPE: 40, ForwardPE: 35, PriceToBook: 12, EnterpriseValue: 1000},
		},
		statements: map[string]*yahoo.Statements{
			"AAA": statements(1.5),
			"BBB": statements(1.0),
			"CCC": statements(0.5),
		},
	}

	report, err := newTestScreener(universe, market).Run(context.Background(), "sp500", 0)
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "quality_value_v1", report.StrategyID)
	assert.Equal(t, "sp500", report.Index)
	assert.Equal(t, 3, report.Universe)
	assert.NotEmpty(t, report.StrategyHash)

	assert.Equal(t, "AAA", report.Results[0].Ticker)
	assert.Equal(t, "CCC", report.Results[2].Ticker)
	assert.Equal(t, 1, report.Results[0].Rank)
	assert.Equal(t, 3, report.Results[2].Rank)
	assert.True(t, float64(report.Results[0].Composite) > float64(report.Results[2].Composite))

	top := report.Results[0]
	assert.Equal(t, "Alpha Corp", top.Company)
	assert.Equal(t, "yahoo", top.EPSSource)
	assert.Contains(t, top.Groups, "value")
	assert.Contains(t, top.Groups, "profitability")
	assert.Contains(t, top.Groups, "growth")
	assert.False(t, top.Metrics["eps_variability"].IsNaN())
}

func TestRun_LimitsUniverse(t *testing.T) {
	universe := &stubUniverse{members: []slickcharts.Constituent{
		{Rank: 1, Symbol: "AAA"},
		{Rank: 2, Symbol: "BBB"},
		{Rank: 3, Symbol: "CCC"},
	}}
	market := &stubMarket{}

	report, err := newTestScreener(universe, market).Run(context.Background(), "sp500", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Universe)
	assert.Len(t, report.Results, 2)
}

func TestRun_UniverseFailureAborts(t *testing.T) {
	universe := &stubUniverse{err: errors.New("blocked")}

	_, err := newTestScreener(universe, &stubMarket{}).Run(context.Background(), "sp500", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sp500")
}

func TestRun_TickerFailureDoesNotAbort(t *testing.T) {
	universe := &stubUniverse{members: []slickcharts.Constituent{
		{Rank: 1, Symbol: "AAA"},
		{Rank: 2, Symbol: "ZZZ"}, // no data anywhere
	}}
	market := &stubMarket{
		valuations: map[string]*yahoo.Valuation{
			"AAA": {TrailingPE: 10, ForwardPE: 9, PriceToBook: 2, EnterpriseValue: 1000},
		},
		statements: map[string]*yahoo.Statements{
			"AAA": statements(1.0),
		},
	}

	report, err := newTestScreener(universe, market).Run(context.Background(), "sp500", 0)
	require.NoError(t, err)

	require.Len(t, report.Results, 2)

	// the dead ticker ranks last with a signal-less composite
	assert.Equal(t, "ZZZ", report.Results[1].Ticker)
	assert.True(t, report.Results[1].Composite.IsNaN())
}

func TestRun_Cancelled(t *testing.T) {
	universe := &stubUniverse{members: []slickcharts.Constituent{{Rank: 1, Symbol: "AAA"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScreener(universe, &stubMarket{}).Run(ctx, "sp500", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStaticUniverse(t *testing.T) {
	members, err := StaticUniverse{"AAPL", "MSFT"}.Constituents(context.Background(), "custom")
	require.NoError(t, err)

	require.Len(t, members, 2)
	assert.Equal(t, slickcharts.Constituent{Rank: 1, Symbol: "AAPL"}, members[0])

	_, err = StaticUniverse{}.Constituents(context.Background(), "custom")
	require.Error(t, err)
}

func TestReportJSON_NaNBecomesNull(t *testing.T) {
	result := Result{
		Ticker:    "ZZZ",
		Composite: Float(math.NaN()),
		Groups:    map[string]Float{"value": Float(math.NaN())},
		Metrics:   map[string]Float{"pe_trailing": Float(12.5)},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Nil(t, decoded["composite"])
	assert.Nil(t, decoded["groups"].(map[string]interface{})["value"])
	assert.InDelta(t, 12.5, decoded["metrics"].(map[string]interface{})["pe_trailing"].(float64), 1e-9)
}

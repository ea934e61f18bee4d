package yahoo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorlab/screener/internal/contracts"
	"github.com/factorlab/screener/pkg/config"
	"github.com/factorlab/screener/pkg/httputil"
	"github.com/factorlab/screener/pkg/logger"
)

const timeseriesEPSBody = `{
  "timeseries": {
    "result": [
      {
        "meta": {"symbol": ["AAPL"], "type": ["annualBasicEPS"]},
        "timestamp": [1632960000, 1664496000, 1696032000],
        "annualBasicEPS": [
          {"asOfDate": "2021-09-30", "reportedValue": {"raw": 5.67, "fmt": "5.67"}},
          null,
          {"asOfDate": "2023-09-30", "reportedValue": {"raw": 6.16, "fmt": "6.16"}}
        ]
      }
    ],
    "error": null
  }
}`

const quoteSummaryBody = `{
  "quoteSummary": {
    "result": [
      {
        "summaryDetail": {
          "trailingPE": {"raw": 29.4, "fmt": "29.40"},
          "forwardPE": {"raw": 27.1, "fmt": "27.10"},
          "marketCap": {"raw": 3400000000000, "fmt": "3.4T"}
        },
        "defaultKeyStatistics": {
          "priceToBook": {"raw": 48.2, "fmt": "48.20"},
          "enterpriseValue": {"raw": 3450000000000, "fmt": "3.45T"}
        },
        "financialData": {}
      }
    ],
    "error": null
  }
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Env:         "development",
		LogLevel:    "error",
		HTTPTimeout: 5 * time.Second,
		Yahoo: config.YahooConfig{
			BaseURL:   server.URL,
			UserAgent: "screener-test/1.0",
		},
	}
	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()

	return NewClient(cfg, httpClient, log), server
}

func TestFetch_BasicEPS(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/finance/timeseries/AAPL")
		assert.Equal(t, "annualBasicEPS", r.URL.Query().Get("type"))
		assert.Equal(t, "screener-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(timeseriesEPSBody))
	}))

	values, err := client.Fetch(context.Background(), "AAPL", contracts.FieldBasicEPS, contracts.Annual)
	require.NoError(t, err)

	// null gap entry dropped, most recent first
	require.Len(t, values, 2)
	assert.InDelta(t, 6.16, values[0], 1e-9)
	assert.InDelta(t, 5.67, values[1], 1e-9)
}

func TestFetch_UnsupportedField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an unsupported field")
	}))

	_, err := client.Fetch(context.Background(), "AAPL", contracts.Field("Free Cash Flow"), contracts.Annual)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrUnsupportedField))
}

func TestFetch_NoData(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timeseries": {"result": [], "error": null}}`))
	}))

	_, err := client.Fetch(context.Background(), "NEWCO", contracts.FieldNetIncome, contracts.Quarterly)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrNoData))
}

func TestFetch_APIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timeseries": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`))
	}))

	_, err := client.Fetch(context.Background(), "NOPE", contracts.FieldBasicEPS, contracts.Annual)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestFetchStatements(t *testing.T) {
	body := `{
	  "timeseries": {
	    "result": [
	      {
	        "meta": {"symbol": ["MSFT"], "type": ["annualGrossProfit"]},
	        "annualGrossProfit": [
	          {"asOfDate": "2022-06-30", "reportedValue": {"raw": 135620000000}},
	          {"asOfDate": "2023-06-30", "reportedValue": {"raw": 146052000000}}
	        ]
	      },
	      {
	        "meta": {"symbol": ["MSFT"], "type": ["annualTotalAssets"]},
	        "annualTotalAssets": [
	          {"asOfDate": "2023-06-30", "reportedValue": {"raw": 411976000000}}
	        ]
	      }
	    ],
	    "error": null
	  }
	}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		types := r.URL.Query().Get("type")
		assert.True(t, strings.Contains(types, "annualGrossProfit"))
		assert.True(t, strings.Contains(types, "annualOperatingCashFlow"))
		w.Write([]byte(body))
	}))

	stmts, err := client.FetchStatements(context.Background(), "MSFT")
	require.NoError(t, err)

	require.Len(t, stmts.GrossProfit, 2)
	assert.InDelta(t, 146052000000, stmts.GrossProfit[0], 1)
	require.Len(t, stmts.TotalAssets, 1)
	assert.Empty(t, stmts.EBIT)
}

func TestFetchValuation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v10/finance/quoteSummary/AAPL")
		w.Write([]byte(quoteSummaryBody))
	}))

	val, err := client.FetchValuation(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.InDelta(t, 29.4, val.TrailingPE, 1e-9)
	assert.InDelta(t, 27.1, val.ForwardPE, 1e-9)
	assert.InDelta(t, 48.2, val.PriceToBook, 1e-9)
	assert.InDelta(t, 3450000000000, val.EnterpriseValue, 1)
	assert.False(t, math.IsNaN(val.MarketCap))
}

func TestFetchValuation_EmptyResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary": {"result": [], "error": null}}`))
	}))

	_, err := client.FetchValuation(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrNoData))
}

func TestName(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())
	assert.Equal(t, "yahoo", client.Name())
}

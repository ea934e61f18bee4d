package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/factorlab/screener/internal/contracts"
)

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"quoteSummary"`
}

type quoteResult struct {
	SummaryDetail        map[string]rawValue `json:"summaryDetail"`
	DefaultKeyStatistics map[string]rawValue `json:"defaultKeyStatistics"`
	FinancialData        map[string]rawValue `json:"financialData"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

// Valuation is the market-price side of the factor inputs.
// Missing fields are NaN.
type Valuation struct {
	TrailingPE      float64
	ForwardPE       float64
	PriceToBook     float64
	EnterpriseValue float64
	MarketCap       float64
}

// FetchValuation retrieves the current valuation ratios from quoteSummary.
func (c *Client) FetchValuation(ctx context.Context, ticker string) (*Valuation, error) {
	params := url.Values{}
	params.Set("modules", "summaryDetail,defaultKeyStatistics,financialData")

	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s",
		c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp quoteSummaryResponse
	if err := c.fetchJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo quoteSummary error: %s (%s)",
			resp.QuoteSummary.Error.Description, resp.QuoteSummary.Error.Code)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: %s quoteSummary: %w", ticker, contracts.ErrNoData)
	}

	result := resp.QuoteSummary.Result[0]
	return &Valuation{
		TrailingPE:      value(result.SummaryDetail, "trailingPE"),
		ForwardPE:       value(result.SummaryDetail, "forwardPE"),
		PriceToBook:     value(result.DefaultKeyStatistics, "priceToBook"),
		EnterpriseValue: value(result.DefaultKeyStatistics, "enterpriseValue"),
		MarketCap:       value(result.SummaryDetail, "marketCap"),
	}, nil
}

func value(module map[string]rawValue, key string) float64 {
	if v, ok := module[key]; ok && v.Raw != nil {
		return *v.Raw
	}
	return math.NaN()
}

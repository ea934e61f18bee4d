package alphavantage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/factorlab/screener/internal/contracts"
)

var _ contracts.FundamentalSource = (*Client)(nil)

type earningsResponse struct {
	Symbol         string `json:"symbol"`
	AnnualEarnings []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		ReportedEPS      string `json:"reportedEPS"`
	} `json:"annualEarnings"`
	QuarterlyEarnings []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		ReportedEPS      string `json:"reportedEPS"`
	} `json:"quarterlyEarnings"`
}

type incomeStatementResponse struct {
	Symbol           string            `json:"symbol"`
	AnnualReports    []incomeStatement `json:"annualReports"`
	QuarterlyReports []incomeStatement `json:"quarterlyReports"`
}

type incomeStatement struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	NetIncome        string `json:"netIncome"`
}

// Fetch retrieves a fundamental line item as a most-recent-first series.
// Implements contracts.FundamentalSource. The API already returns reports
// newest first, so no reordering is needed.
func (c *Client) Fetch(ctx context.Context, ticker string, field contracts.Field, periodicity contracts.Periodicity) ([]float64, error) {
	var raw []string
	var err error

	switch field {
	case contracts.FieldBasicEPS:
		raw, err = c.fetchEPS(ctx, ticker, periodicity)
	case contracts.FieldNetIncome:
		raw, err = c.fetchNetIncome(ctx, ticker, periodicity)
	default:
		return nil, fmt.Errorf("alphavantage: %q: %w", field, contracts.ErrUnsupportedField)
	}
	if err != nil {
		return nil, err
	}

	values := parseValues(raw)
	if len(values) == 0 {
		return nil, fmt.Errorf("alphavantage: %s %q: %w", ticker, field, contracts.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"field":  string(field),
		"points": len(values),
	}).Debug("Fetched fundamentals")

	return values, nil
}

func (c *Client) fetchEPS(ctx context.Context, ticker string, periodicity contracts.Periodicity) ([]string, error) {
	var resp earningsResponse
	if err := c.query(ctx, "EARNINGS", ticker, &resp); err != nil {
		return nil, err
	}

	if periodicity == contracts.Quarterly {
		out := make([]string, len(resp.QuarterlyEarnings))
		for i, e := range resp.QuarterlyEarnings {
			out[i] = e.ReportedEPS
		}
		return out, nil
	}

	out := make([]string, len(resp.AnnualEarnings))
	for i, e := range resp.AnnualEarnings {
		out[i] = e.ReportedEPS
	}
	return out, nil
}

func (c *Client) fetchNetIncome(ctx context.Context, ticker string, periodicity contracts.Periodicity) ([]string, error) {
	var resp incomeStatementResponse
	if err := c.query(ctx, "INCOME_STATEMENT", ticker, &resp); err != nil {
		return nil, err
	}

	reports := resp.AnnualReports
	if periodicity == contracts.Quarterly {
		reports = resp.QuarterlyReports
	}

	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.NetIncome
	}
	return out, nil
}

// parseValues converts the API's string numbers, skipping "None" placeholders
func parseValues(raw []string) []float64 {
	values := make([]float64, 0, len(raw))
	for _, s := range raw {
		if s == "" || s == "None" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

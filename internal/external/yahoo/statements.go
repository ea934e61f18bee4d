package yahoo

import (
	"context"
	"fmt"

	"github.com/factorlab/screener/internal/contracts"
)

// statement line items pulled in one timeseries request
var statementTypes = []string{
	"annualGrossProfit",
	"annualTotalRevenue",
	"annualNetIncome",
	"annualEBIT",
	"annualTotalAssets",
	"annualStockholdersEquity",
	"annualOperatingCashFlow",
}

// Statements holds annual statement lines as most-recent-first series.
// Series may have different lengths; callers index defensively.
type Statements struct {
	GrossProfit        []float64
	TotalRevenue       []float64
	NetIncome          []float64
	EBIT               []float64
	TotalAssets        []float64
	StockholdersEquity []float64
	OperatingCashFlow  []float64
}

// FetchStatements retrieves the annual statement lines needed for the
// profitability and growth metrics.
func (c *Client) FetchStatements(ctx context.Context, ticker string) (*Statements, error) {
	series, err := c.fetchTimeseries(ctx, ticker, statementTypes)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo: %s statements: %w", ticker, contracts.ErrNoData)
	}

	values := func(typeName string) []float64 {
		rows := series[typeName]
		out := make([]float64, len(rows))
		for i, row := range rows {
			out[i] = row.ReportedValue.Raw
		}
		return out
	}

	return &Statements{
		GrossProfit:        values("annualGrossProfit"),
		TotalRevenue:       values("annualTotalRevenue"),
		NetIncome:          values("annualNetIncome"),
		EBIT:               values("annualEBIT"),
		TotalAssets:        values("annualTotalAssets"),
		StockholdersEquity: values("annualStockholdersEquity"),
		OperatingCashFlow:  values("annualOperatingCashFlow"),
	}, nil
}

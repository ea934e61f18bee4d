package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/factorlab/screener/internal/contracts"
)

var _ contracts.FundamentalSource = (*Client)(nil)

// timeseries type names, keyed by field and periodicity
var timeseriesTypes = map[contracts.Field]map[contracts.Periodicity]string{
	contracts.FieldBasicEPS: {
		contracts.Annual:    "annualBasicEPS",
		contracts.Quarterly: "quarterlyBasicEPS",
	},
	contracts.FieldNetIncome: {
		contracts.Annual:    "annualNetIncome",
		contracts.Quarterly: "quarterlyNetIncome",
	},
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []timeseriesResult `json:"result"`
		Error  *apiError          `json:"error"`
	} `json:"timeseries"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// timeseriesResult keys the observation array by its type name, so the
// payload has to be decoded in two passes.
type timeseriesResult struct {
	Meta struct {
		Symbol []string `json:"symbol"`
		Type   []string `json:"type"`
	} `json:"meta"`
	Rows map[string][]*timeseriesRow
}

type timeseriesRow struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue struct {
		Raw float64 `json:"raw"`
	} `json:"reportedValue"`
}

func (r *timeseriesResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if meta, ok := fields["meta"]; ok {
		if err := json.Unmarshal(meta, &r.Meta); err != nil {
			return err
		}
	}

	r.Rows = make(map[string][]*timeseriesRow)
	for _, typeName := range r.Meta.Type {
		raw, ok := fields[typeName]
		if !ok {
			continue
		}
		var rows []*timeseriesRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			return fmt.Errorf("failed to decode %s rows: %w", typeName, err)
		}
		r.Rows[typeName] = rows
	}

	return nil
}

// fetchTimeseries fetches one or more fundamentals timeseries in a single
// request and returns rows per type, most recent first.
func (c *Client) fetchTimeseries(ctx context.Context, ticker string, types []string) (map[string][]timeseriesRow, error) {
	now := time.Now()
	params := url.Values{}
	params.Set("type", strings.Join(types, ","))
	params.Set("period1", fmt.Sprintf("%d", now.AddDate(-11, 0, 0).Unix()))
	params.Set("period2", fmt.Sprintf("%d", now.Unix()))
	params.Set("merge", "false")

	reqURL := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?%s",
		c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp timeseriesResponse
	if err := c.fetchJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("yahoo timeseries error: %s (%s)",
			resp.Timeseries.Error.Description, resp.Timeseries.Error.Code)
	}

	out := make(map[string][]timeseriesRow, len(types))
	for _, result := range resp.Timeseries.Result {
		for typeName, rows := range result.Rows {
			for _, row := range rows {
				// gap years come back as null entries
				if row == nil || row.AsOfDate == "" {
					continue
				}
				out[typeName] = append(out[typeName], *row)
			}
		}
	}

	// asOfDate is ISO formatted, so a string sort orders correctly
	for typeName := range out {
		rows := out[typeName]
		sort.Slice(rows, func(i, j int) bool { return rows[i].AsOfDate > rows[j].AsOfDate })
	}

	return out, nil
}

// Fetch retrieves a fundamental line item as a most-recent-first series.
// Implements contracts.FundamentalSource.
func (c *Client) Fetch(ctx context.Context, ticker string, field contracts.Field, periodicity contracts.Periodicity) ([]float64, error) {
	byPeriodicity, ok := timeseriesTypes[field]
	if !ok {
		return nil, fmt.Errorf("yahoo: %q: %w", field, contracts.ErrUnsupportedField)
	}
	typeName, ok := byPeriodicity[periodicity]
	if !ok {
		return nil, fmt.Errorf("yahoo: %q %s: %w", field, periodicity, contracts.ErrUnsupportedField)
	}

	series, err := c.fetchTimeseries(ctx, ticker, []string{typeName})
	if err != nil {
		return nil, err
	}

	rows := series[typeName]
	if len(rows) == 0 {
		return nil, fmt.Errorf("yahoo: %s %s: %w", ticker, typeName, contracts.ErrNoData)
	}

	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.ReportedValue.Raw
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"type":   typeName,
		"points": len(values),
	}).Debug("Fetched fundamentals timeseries")

	return values, nil
}

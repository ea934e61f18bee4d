package slickcharts

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/factorlab/screener/pkg/config"
	"github.com/factorlab/screener/pkg/httputil"
	"github.com/factorlab/screener/pkg/logger"
)

// Client scrapes index constituent tables from SlickCharts.
// SSOT: index membership lookups happen only in this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// Constituent is one index member row
type Constituent struct {
	Rank    int     `json:"rank"`
	Company string  `json:"company"`
	Symbol  string  `json:"symbol"`
	Weight  float64 `json:"weight"`
}

// NewClient creates a new SlickCharts client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.Index.BaseURL,
	}
}

// Constituents fetches the member list for an index page such as "sp500"
// or "nasdaq100", ordered by index weight descending.
func (c *Client) Constituents(ctx context.Context, index string) ([]Constituent, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, index)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	constituents := parseConstituentTable(doc)
	if len(constituents) == 0 {
		return nil, fmt.Errorf("no constituents found for index %q", index)
	}

	c.logger.WithFields(map[string]interface{}{
		"index": index,
		"count": len(constituents),
	}).Info("Fetched index constituents")

	return constituents, nil
}

// parseConstituentTable extracts rows from the first constituents table.
// Columns: # | Company | Symbol | Weight | Price | ...
func parseConstituentTable(doc *goquery.Document) []Constituent {
	var constituents []Constituent

	doc.Find("table.table tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		rank, err := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return
		}

		symbol := strings.TrimSpace(cells.Eq(2).Text())
		if symbol == "" {
			return
		}

		weightText := strings.TrimSpace(cells.Eq(3).Text())
		weightText = strings.TrimSuffix(weightText, "%")
		weightText = strings.ReplaceAll(weightText, ",", "")
		weight, err := strconv.ParseFloat(weightText, 64)
		if err != nil {
			weight = 0
		}

		constituents = append(constituents, Constituent{
			Rank:    rank,
			Company: strings.TrimSpace(cells.Eq(1).Text()),
			Symbol:  symbol,
			Weight:  weight,
		})
	})

	return constituents
}

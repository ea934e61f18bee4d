package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/factorlab/screener/pkg/config"
	"github.com/factorlab/screener/pkg/httputil"
	"github.com/factorlab/screener/pkg/logger"
)

// Client handles communication with the Alpha Vantage API.
// SSOT: Alpha Vantage calls happen only in this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new Alpha Vantage client.
// The free tier quota is enforced client-side via the rate limiter.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.WithRateLimit(cfg.AlphaVantage.RequestsPerMinute),
		logger:     log,
		baseURL:    cfg.AlphaVantage.BaseURL,
		apiKey:     cfg.AlphaVantage.APIKey,
	}
}

// Name identifies this client as a fundamental source
func (c *Client) Name() string {
	return "alphavantage"
}

// query calls the given API function and decodes the JSON body into out
func (c *Client) query(ctx context.Context, function, ticker string, out interface{}) error {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", ticker)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Errors come back as 200 with a note in the body
	var note struct {
		ErrorMessage string `json:"Error Message"`
		Note         string `json:"Note"`
		Information  string `json:"Information"`
	}
	if err := json.Unmarshal(body, &note); err == nil {
		switch {
		case note.ErrorMessage != "":
			return fmt.Errorf("alphavantage error: %s", note.ErrorMessage)
		case note.Note != "":
			return fmt.Errorf("alphavantage throttled: %s", note.Note)
		case note.Information != "":
			return fmt.Errorf("alphavantage: %s", note.Information)
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

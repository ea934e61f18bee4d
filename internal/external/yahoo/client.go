package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/factorlab/screener/pkg/config"
	"github.com/factorlab/screener/pkg/httputil"
	"github.com/factorlab/screener/pkg/logger"
)

// Client handles communication with the Yahoo Finance API.
// SSOT: Yahoo Finance calls happen only in this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.WithUserAgent(cfg.Yahoo.UserAgent),
		logger:     log,
		baseURL:    cfg.Yahoo.BaseURL,
	}
}

// Name identifies this client as a fundamental source
func (c *Client) Name() string {
	return "yahoo"
}

// fetchJSON fetches a URL and decodes the JSON body into out
func (c *Client) fetchJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.httpClient.Get(ctx, url)
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

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

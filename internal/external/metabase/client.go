// Package metabase fetches the inconsistency export from the upstream
// Metabase instance. A saved card exposes the counts as a CSV download; the
// client pulls it and decodes the rows. The core never sees this package
// behind anything but the ExportSource interface.
package metabase

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/pkg/config"
	"github.com/novopnp/painel/pkg/httputil"
	"github.com/novopnp/painel/pkg/logger"
)

// Client downloads the card export from Metabase.
type Client struct {
	baseURL    string
	apiKey     string
	cardID     int
	httpClient *httputil.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewClient creates a new Metabase export client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.Metabase.BaseURL,
		apiKey:     cfg.Metabase.APIKey,
		cardID:     cfg.Metabase.CardID,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Metabase.RateLimit), 1),
		logger:     log,
	}
}

// FetchExport downloads and decodes the card's CSV export.
func (c *Client) FetchExport(ctx context.Context) ([]contracts.RawRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/api/card/%d/query/csv", c.baseURL, c.cardID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("metabase card %d returned %d: %s", c.cardID, resp.StatusCode, string(body))
	}

	rows, err := decodeRows(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"card": c.cardID,
		"rows": len(rows),
	}).Info("Fetched inconsistency export")

	return rows, nil
}

var _ contracts.ExportSource = (*Client)(nil)

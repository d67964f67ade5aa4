// Rate limited HTTP client shared by station adapters
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StationClient performs HTTP requests against a music station, waiting on a shared [rate.Limiter] before each one.
type StationClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewStationClient creates a StationClient allowing rps requests per second.
//
// A nil client uses a client with the given timeout; rps <= 0 disables limiting.
func NewStationClient(client *http.Client, timeout time.Duration, rps float64) *StationClient {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &StationClient{
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Do waits for the limiter, then sends a GET for rawURL with browser-like headers.
//
// The caller must close the response body.
func (c *StationClient) Do(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/json,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en-US;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// Get fetches rawURL and returns the body of a 2xx response.
func (c *StationClient) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.Do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

package gwa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/wind-yield/internal/adapter/gwc"
	"github.com/couchcryptid/wind-yield/internal/domain"
	"github.com/couchcryptid/wind-yield/internal/observability"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL serves GWC files for arbitrary coordinates.
const DefaultBaseURL = "https://globalwindatlas.info/api/gwa/custom/Lib/"

// Client implements domain.GridSource using the Global Wind Atlas API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Global Wind Atlas client. Repeated failures open a
// circuit breaker that rejects calls until breakerTimeout has passed.
func NewClient(baseURL string, timeout, breakerTimeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		breaker:    newBreaker(breakerTimeout, logger),
		metrics:    metrics,
		logger:     logger,
	}
}

func newBreaker(timeout time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gwa",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "client", name, "from", from.String(), "to", to.String())
		},
	})
}

// Grid fetches and parses the generalized wind climate nearest (lat, lon).
func (c *Client) Grid(ctx context.Context, lat, lon float64) (*domain.ClimateGrid, error) {
	params := url.Values{
		"lat":  {strconv.FormatFloat(lat, 'f', 6, 64)},
		"long": {strconv.FormatFloat(lon, 'f', 6, 64)},
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, c.baseURL+"?"+params.Encode())
	})
	c.metrics.GWAAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GridFetches.WithLabelValues("gwa", "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("gwa unavailable: %w", err)
		}
		return nil, err
	}

	grid, err := gwc.Parse(bytes.NewReader(body.([]byte)))
	if err != nil {
		c.metrics.GridFetches.WithLabelValues("gwa", "error").Inc()
		return nil, fmt.Errorf("parse gwa response: %w", err)
	}
	c.metrics.GridFetches.WithLabelValues("gwa", "success").Inc()
	c.logger.Debug("fetched climate grid", "lat", lat, "lon", lon,
		"grid_lat", grid.Latitude(), "grid_lon", grid.Longitude())
	return grid, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gwa request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gwa response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gwa API error: status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// Package fmi reads the Finnish Meteorological Institute open-data WFS feeds.
package fmi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

// DefaultBaseURL is the public FMI WFS endpoint.
const DefaultBaseURL = "https://opendata.fmi.fi/wfs"

// timeLayout is the start/end time format FMI stored queries accept.
const timeLayout = "2006-01-02T15:04:05Z"

// Feed names used in metrics and logs.
const (
	feedCurrent   = "current"
	feedForecast  = "forecast"
	feedLightning = "lightning"
	feedSeaLevel  = "sealevel"
)

// Client queries FMI stored queries over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	loopBudget time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithClock replaces the real clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithLoopBudget bounds the wall time spent walking a lightning response.
// Zero disables the check.
func WithLoopBudget(d time.Duration) Option {
	return func(c *Client) { c.loopBudget = d }
}

// NewClient creates an FMI client. timeout bounds every HTTP request.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clockwork.NewRealClock(),
		loopBudget: 20 * time.Second,
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func storedQuery(id string) url.Values {
	return url.Values{
		"service":        {"WFS"},
		"version":        {"2.0.0"},
		"request":        {"getFeature"},
		"storedquery_id": {id},
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatLatLon(c domain.Coordinate) string {
	return fmt.Sprintf("%s,%s", formatFloat(c.Lat), formatFloat(c.Lon))
}

// fetch issues one GET for params and hands the body to parse. Transport
// failures and non-2xx statuses wrap domain.ErrFetch.
func (c *Client) fetch(ctx context.Context, feed string, params url.Values, parse func(io.Reader) error) error {
	start := time.Now()
	err := c.do(ctx, feed, params, parse)
	c.metrics.FeedDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.FeedRequests.WithLabelValues(feed, outcome).Inc()
	return err
}

func (c *Client) do(ctx context.Context, feed string, params url.Values, parse func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", feed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w: %w", feed, domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: fmi %s feed: status %d: %s", domain.ErrFetch, feed, resp.StatusCode, body)
	}

	return parse(resp.Body)
}

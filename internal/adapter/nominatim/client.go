// Package nominatim reverse-geocodes coordinates with the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Config configures a Client.
type Config struct {
	BaseURL   string
	UserAgent string
	Language  string
	Timeout   time.Duration
	// RPS caps request rate; the public instance allows one per second.
	RPS float64
}

// Client implements domain.Geocoder using the Nominatim reverse endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client.
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		language:  language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "nominatim",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("geocoder circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		}),
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode converts coordinates to an address. A location Nominatim
// cannot geocode (open sea, for one) yields an empty result and no error.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("%w: rate limit wait: %w", domain.ErrGeocode, err)
	}

	params := url.Values{
		"format":          {"jsonv2"},
		"lat":             {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":             {strconv.FormatFloat(lon, 'f', 6, 64)},
		"accept-language": {c.language},
	}
	fullURL := c.baseURL + "/reverse?" + params.Encode()

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, fullURL)
	})
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.GeocodingResult{}, fmt.Errorf("%w: %w", domain.ErrGeocode, err)
		}
		return domain.GeocodingResult{}, err
	}

	result := out.(domain.GeocodingResult)
	if result.FormattedAddress == "" {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	} else {
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("%w: reverse geocode request: %w", domain.ErrGeocode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("%w: nominatim API error: status %d: %s", domain.ErrGeocode, resp.StatusCode, body)
	}

	var place response
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("%w: decode response: %w", domain.ErrGeocode, err)
	}

	if place.Error != "" {
		c.logger.Debug("nominatim found no place", "reason", place.Error)
		return domain.GeocodingResult{}, nil
	}

	result := domain.GeocodingResult{
		FormattedAddress: place.DisplayName,
		PlaceName:        place.Name,
	}
	if v, err := strconv.ParseFloat(place.Lat, 64); err == nil {
		result.Lat = v
	}
	if v, err := strconv.ParseFloat(place.Lon, 64); err == nil {
		result.Lon = v
	}
	return result, nil
}

// Nominatim jsonv2 response. Coordinates arrive as strings.
type response struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

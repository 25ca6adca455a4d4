package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/fmi-weather-service/internal/config"
	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

// ErrCycleTimeout marks a cycle that ran past its deadline. Nothing is
// published for such a cycle.
var ErrCycleTimeout = errors.New("refresh cycle timed out")

// WeatherSource provides current conditions and the point forecast.
type WeatherSource interface {
	FetchCurrent(ctx context.Context, coord domain.Coordinate, stationID string) (*domain.WeatherObservation, error)
	FetchForecast(ctx context.Context, coord domain.Coordinate, stepHours, days int) ([]domain.ForecastPoint, error)
}

// SeaLevelSource provides the sea-level forecast near a point.
type SeaLevelSource interface {
	FetchSeaLevels(ctx context.Context, center domain.Coordinate, timeout time.Duration) ([]domain.SeaLevelRecord, error)
}

// SnapshotPublisher hands a finished snapshot to out-of-process readers.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, result *domain.RefreshResult) error
}

// Settings is the per-location behaviour of a Refresher.
type Settings struct {
	Location              domain.Coordinate
	StationID             string
	ForecastStepHours     int
	ForecastDays          int
	DailyMode             bool
	Thresholds            domain.Thresholds
	LightningEnabled      bool
	LightningRadiusKM     float64
	LightningLookbackDays int
	SeaLevelTimeout       time.Duration
	GeocodeTimeout        time.Duration
	CycleTimeout          time.Duration
	Timezone              *time.Location
}

// SettingsFromConfig maps service configuration onto refresher settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Location:              cfg.Coordinate(),
		StationID:             cfg.StationID,
		ForecastStepHours:     cfg.ForecastStepHours,
		ForecastDays:          cfg.ForecastDays,
		DailyMode:             cfg.DailyMode,
		Thresholds:            cfg.Thresholds(),
		LightningEnabled:      cfg.LightningEnabled,
		LightningRadiusKM:     cfg.LightningRadiusKM,
		LightningLookbackDays: cfg.LightningLookbackDays,
		SeaLevelTimeout:       cfg.SeaLevelTimeout,
		GeocodeTimeout:        cfg.NominatimTimeout,
		CycleTimeout:          cfg.CycleTimeout,
		Timezone:              cfg.Location,
	}
}

// Refresher runs refresh cycles and holds the latest published snapshot.
type Refresher struct {
	settings  Settings
	weather   WeatherSource
	lightning *LightningProcessor
	seaLevel  SeaLevelSource
	geocoder  domain.Geocoder
	publisher SnapshotPublisher
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger

	snapshot atomic.Pointer[domain.RefreshResult]
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithClock overrides the wall clock, for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Refresher) { r.clock = clock }
}

// WithGeocoder resolves the home coordinate to a place name each cycle.
func WithGeocoder(g domain.Geocoder) Option {
	return func(r *Refresher) { r.geocoder = g }
}

// WithPublisher forwards every published snapshot to p.
func WithPublisher(p SnapshotPublisher) Option {
	return func(r *Refresher) { r.publisher = p }
}

// New creates a Refresher. lightning may be nil when strikes are not wanted.
func New(settings Settings, weather WeatherSource, lightning *LightningProcessor, seaLevel SeaLevelSource, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Refresher {
	if settings.Timezone == nil {
		settings.Timezone = time.UTC
	}
	if settings.ForecastStepHours <= 0 {
		settings.ForecastStepHours = 1
	}
	r := &Refresher{
		settings:  settings,
		weather:   weather,
		lightning: lightning,
		seaLevel:  seaLevel,
		clock:     clockwork.NewRealClock(),
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh runs one cycle. On success the new snapshot replaces the previous
// one atomically; on failure the previous snapshot stays in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	cycleCtx := ctx
	if r.settings.CycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, r.settings.CycleTimeout)
		defer cancel()
	}

	result, err := r.runCycle(cycleCtx)
	r.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "failed"
		if errors.Is(cycleCtx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
			err = fmt.Errorf("%w: %w", ErrCycleTimeout, err)
		}
		r.metrics.RefreshCycles.WithLabelValues(outcome).Inc()
		r.logger.Error("refresh cycle failed", "outcome", outcome, "error", err)
		return err
	}

	r.snapshot.Store(result)
	r.metrics.RefreshCycles.WithLabelValues("success").Inc()
	r.logger.Info("refresh cycle complete",
		"cycle_id", result.CycleID,
		"forecasts", len(result.Forecasts),
		"strikes", len(result.LightningStrikes),
		"sea_levels", len(result.SeaLevels),
		"duration", time.Since(start),
	)

	if r.publisher != nil {
		if err := r.publisher.PublishSnapshot(ctx, result); err != nil {
			r.logger.Error("publish snapshot failed", "cycle_id", result.CycleID, "error", err)
		}
	}
	return nil
}

func (r *Refresher) runCycle(ctx context.Context) (*domain.RefreshResult, error) {
	s := r.settings
	prev := r.snapshot.Load()
	if prev == nil {
		prev = &domain.RefreshResult{}
	}
	now := r.clock.Now().In(s.Timezone)

	current, err := r.weather.FetchCurrent(ctx, s.Location, s.StationID)
	if err != nil {
		return nil, fmt.Errorf("fetch current weather: %w", err)
	}

	result := &domain.RefreshResult{
		CycleID:     uuid.NewString(),
		RefreshedAt: now.UTC(),
		Location:    s.Location,
		Current:     current,
		Success:     true,
	}

	staleForecasts := false
	if s.ForecastDays > 0 {
		forecasts, err := r.weather.FetchForecast(ctx, s.Location, s.ForecastStepHours, s.ForecastDays)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("fetch forecast: %w", err)
			}
			r.logger.Warn("forecast fetch failed, keeping previous forecasts", "error", err)
			forecasts = prev.Forecasts
			staleForecasts = true
		}
		result.Forecasts = forecasts
	}

	result.BestCondition = domain.EvaluateBestCondition(current, result.Forecasts, s.Thresholds, now)

	if r.lightning != nil && s.LightningEnabled && s.LightningRadiusKM > 0 {
		strikes, err := r.lightning.FetchAndRank(ctx, s.Location, s.LightningRadiusKM, s.LightningLookbackDays)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("fetch lightning: %w", err)
			}
			r.logger.Warn("lightning fetch failed, keeping previous strikes", "error", err)
			strikes = prev.LightningStrikes
		}
		result.LightningStrikes = strikes
	}

	if r.seaLevel != nil {
		levels, err := r.seaLevel.FetchSeaLevels(ctx, s.Location, s.SeaLevelTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("fetch sea level: %w", err)
			}
			r.logger.Warn("sea level fetch failed, keeping previous records", "error", err)
			levels = prev.SeaLevels
		}
		result.SeaLevels = levels
	}

	result.Place = domain.ResolvePlace(ctx, s.Location, r.geocoder, s.GeocodeTimeout, r.logger)
	displaySeries := result.Forecasts
	if staleForecasts {
		displaySeries = upcoming(displaySeries, now)
	}
	result.Observation = domain.SelectDisplayObservation(current, displaySeries, now, s.ForecastStepHours)
	if staleForecasts && result.Observation == nil {
		result.Observation = current
	}
	if s.DailyMode {
		result.DailyForecasts = domain.AggregateDaily(result.Forecasts, s.Timezone)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// upcoming drops the points of a reused forecast series that start before
// the current hour, matching where a fresh fetch would begin.
func upcoming(forecasts []domain.ForecastPoint, now time.Time) []domain.ForecastPoint {
	hour := now.Truncate(time.Hour)
	for i := range forecasts {
		if !forecasts[i].Time.Before(hour) {
			return forecasts[i:]
		}
	}
	return nil
}

// Latest returns the most recent snapshot, or nil before the first
// successful cycle. Callers must not modify it.
func (r *Refresher) Latest() *domain.RefreshResult {
	return r.snapshot.Load()
}

// Current returns the latest current-weather observation.
func (r *Refresher) Current() *domain.WeatherObservation {
	if s := r.snapshot.Load(); s != nil {
		return s.Current
	}
	return nil
}

// Forecasts returns the latest forecast series.
func (r *Refresher) Forecasts() []domain.ForecastPoint {
	if s := r.snapshot.Load(); s != nil {
		return s.Forecasts
	}
	return nil
}

// BestCondition returns the latest best-condition summary.
func (r *Refresher) BestCondition() *domain.BestCondition {
	if s := r.snapshot.Load(); s != nil {
		return s.BestCondition
	}
	return nil
}

// LightningStrikes returns the latest ranked strikes.
func (r *Refresher) LightningStrikes() []domain.LightningStrike {
	if s := r.snapshot.Load(); s != nil {
		return s.LightningStrikes
	}
	return nil
}

// SeaLevels returns the latest sea-level forecast.
func (r *Refresher) SeaLevels() []domain.SeaLevelRecord {
	if s := r.snapshot.Load(); s != nil {
		return s.SeaLevels
	}
	return nil
}

// CheckReadiness returns nil once a snapshot has been published.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if r.snapshot.Load() == nil {
		return errors.New("no weather snapshot published yet")
	}
	return nil
}

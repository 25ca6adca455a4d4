package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/fmi-weather-service/internal/adapter/fmi"
	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
)

// LightningSource fetches and parses raw strikes around a center point.
type LightningSource interface {
	FetchLightning(ctx context.Context, q fmi.LightningQuery) ([]domain.StrikeObservation, error)
}

// LightningProcessor turns the raw strike feed into the ranked, place-resolved
// list that readers see.
type LightningProcessor struct {
	source         LightningSource
	geocoder       domain.Geocoder
	limit          int
	feedTimeout    time.Duration
	geocodeTimeout time.Duration
	location       *time.Location
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// LightningOptions tunes a LightningProcessor. Zero values fall back to the
// stock limit and UTC.
type LightningOptions struct {
	Limit          int
	FeedTimeout    time.Duration
	GeocodeTimeout time.Duration
	Location       *time.Location
}

// NewLightningProcessor wires a strike source to an optional geocoder. A nil
// geocoder leaves every strike labelled with its coordinates.
func NewLightningProcessor(source LightningSource, geocoder domain.Geocoder, opts LightningOptions, metrics *observability.Metrics, logger *slog.Logger) *LightningProcessor {
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultStrikeLimit
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &LightningProcessor{
		source:         source,
		geocoder:       geocoder,
		limit:          opts.Limit,
		feedTimeout:    opts.FeedTimeout,
		geocodeTimeout: opts.GeocodeTimeout,
		location:       opts.Location,
		metrics:        metrics,
		logger:         logger,
	}
}

// FetchAndRank pulls strikes inside the square of half-side radiusKM around
// center, keeps the closest ones and resolves a place name for each.
func (p *LightningProcessor) FetchAndRank(ctx context.Context, center domain.Coordinate, radiusKM float64, lookbackDays int) ([]domain.LightningStrike, error) {
	obs, err := p.source.FetchLightning(ctx, fmi.LightningQuery{
		Center:       center,
		RadiusKM:     radiusKM,
		LookbackDays: lookbackDays,
		Timeout:      p.feedTimeout,
	})
	if err != nil {
		return nil, err
	}

	ranked := domain.RankStrikes(obs, p.limit)
	strikes := make([]domain.LightningStrike, 0, len(ranked))
	for _, s := range ranked {
		strikes = append(strikes, domain.LightningStrike{
			Time:         s.ObservedAt.In(p.location).Format(domain.StrikeTimeLayout),
			ObservedAt:   s.ObservedAt,
			Place:        domain.ResolvePlace(ctx, s.Coordinate, p.geocoder, p.geocodeTimeout, p.logger),
			DistanceKM:   domain.RoundTo(s.DistanceKM, 2),
			StrikeCount:  s.StrikeCount,
			PeakCurrent:  s.PeakCurrent,
			CloudCover:   s.CloudCover,
			EllipseMajor: s.EllipseMajor,
			Coordinate:   s.Coordinate,
		})
	}

	p.metrics.StrikesRetained.Set(float64(len(strikes)))
	p.logger.Debug("lightning strikes ranked",
		"parsed", len(obs),
		"retained", len(strikes),
	)
	return strikes, nil
}

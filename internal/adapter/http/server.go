package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
)

// SnapshotReader exposes the latest published refresh result.
type SnapshotReader interface {
	sharedobs.ReadinessChecker
	Latest() *domain.RefreshResult
}

// Server exposes health, readiness, metrics and the read-only weather API.
type Server struct {
	httpServer *http.Server
	snapshots  SnapshotReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 weather routes.
func NewServer(addr string, snapshots SnapshotReader, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		snapshots: snapshots,
		logger:    logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(snapshots))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.withSnapshot(s.handleSnapshot))
		r.Get("/weather/current", s.withSnapshot(s.handleCurrent))
		r.Get("/weather/forecast", s.withSnapshot(s.handleForecast))
		r.Get("/weather/best-condition", s.withSnapshot(s.handleBestCondition))
		r.Get("/lightning", s.withSnapshot(s.handleLightning))
		r.Get("/sea-level", s.withSnapshot(s.handleSeaLevel))
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type snapshotHandler func(w http.ResponseWriter, r *http.Request, snap *domain.RefreshResult)

// withSnapshot answers 503 until the first refresh cycle has published.
func (s *Server) withSnapshot(next snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.snapshots.Latest()
		if snap == nil {
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "no weather data yet",
			})
			return
		}
		next(w, r, snap)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request, snap *domain.RefreshResult) {
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request, snap *domain.RefreshResult) {
	obs := snap.Observation
	if obs == nil {
		obs = snap.Current
	}
	sharedobs.WriteJSON(w, http.StatusOK, currentResponse{
		CycleID:     snap.CycleID,
		RefreshedAt: snap.RefreshedAt,
		Place:       snap.Place,
		Location:    snap.Location,
		Weather:     newObservationView(obs, snap.Location),
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, _ *http.Request, snap *domain.RefreshResult) {
	points := make([]observationView, 0, len(snap.Forecasts))
	for i := range snap.Forecasts {
		points = append(points, *newObservationView(&snap.Forecasts[i], snap.Location))
	}
	days := make([]dailyView, 0, len(snap.DailyForecasts))
	for _, d := range snap.DailyForecasts {
		days = append(days, newDailyView(d, snap.Location))
	}
	sharedobs.WriteJSON(w, http.StatusOK, forecastResponse{
		CycleID:     snap.CycleID,
		RefreshedAt: snap.RefreshedAt,
		Forecasts:   points,
		Daily:       days,
	})
}

func (s *Server) handleBestCondition(w http.ResponseWriter, _ *http.Request, snap *domain.RefreshResult) {
	if snap.BestCondition == nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "no forecast available",
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap.BestCondition)
}

func (s *Server) handleLightning(w http.ResponseWriter, _ *http.Request, snap *domain.RefreshResult) {
	strikes := snap.LightningStrikes
	if strikes == nil {
		strikes = []domain.LightningStrike{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"refreshed_at": snap.RefreshedAt,
		"strikes":      strikes,
	})
}

func (s *Server) handleSeaLevel(w http.ResponseWriter, _ *http.Request, snap *domain.RefreshResult) {
	levels := snap.SeaLevels
	if levels == nil {
		levels = []domain.SeaLevelRecord{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"refreshed_at": snap.RefreshedAt,
		"sea_levels":   levels,
	})
}

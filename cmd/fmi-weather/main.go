package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/fmi-weather-service/internal/adapter/fmi"
	httpadapter "github.com/couchcryptid/fmi-weather-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fmi-weather-service/internal/adapter/kafka"
	"github.com/couchcryptid/fmi-weather-service/internal/adapter/nominatim"
	"github.com/couchcryptid/fmi-weather-service/internal/config"
	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
	"github.com/couchcryptid/fmi-weather-service/internal/refresh"
	"github.com/couchcryptid/fmi-weather-service/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Reverse geocoding is feature-flagged via NOMINATIM_ENABLED.
	var geocoder domain.Geocoder
	if cfg.NominatimEnabled {
		client := nominatim.NewClient(nominatim.Config{
			BaseURL:   cfg.NominatimURL,
			UserAgent: cfg.NominatimUserAgent,
			Language:  "en",
			Timeout:   cfg.NominatimTimeout,
			RPS:       cfg.NominatimRPS,
		}, metrics, logger)
		cached, err := nominatim.NewCachedGeocoder(client, cfg.NominatimCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocode cache", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("nominatim geocoding enabled", "cache_size", cfg.NominatimCacheSize, "rps", cfg.NominatimRPS)
	} else {
		logger.Info("nominatim geocoding disabled")
	}

	fmiClient := fmi.NewClient(cfg.FMIBaseURL, cfg.RequestTimeout, metrics, logger,
		fmi.WithLoopBudget(cfg.LightningLoopBudget),
	)

	var lightning *refresh.LightningProcessor
	if cfg.LightningEnabled {
		lightning = refresh.NewLightningProcessor(fmiClient, geocoder, refresh.LightningOptions{
			Limit:          cfg.LightningLimit,
			FeedTimeout:    cfg.LightningTimeout,
			GeocodeTimeout: cfg.NominatimTimeout,
			Location:       cfg.Location,
		}, metrics, logger)
	}

	opts := []refresh.Option{refresh.WithGeocoder(geocoder)}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		opts = append(opts, refresh.WithPublisher(writer))
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	refresher := refresh.New(refresh.SettingsFromConfig(cfg), fmiClient, lightning, fmiClient, metrics, logger, opts...)
	sched := scheduler.New(refresher, cfg.RefreshInterval, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// The first cycle runs before Start returns.
	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

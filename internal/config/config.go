package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
)

// Config holds all service settings. Values come from an optional TOML file
// (CONFIG_FILE) and environment variables, which take precedence.
type Config struct {
	Latitude          float64 `toml:"latitude" validate:"gte=-90,lte=90"`
	Longitude         float64 `toml:"longitude" validate:"gte=-180,lte=180"`
	StationID         string  `toml:"station_id" validate:"omitempty,numeric"`
	ForecastStepHours int     `toml:"forecast_step_hours" validate:"oneof=1 2 3 4 6 8 12 24"`
	ForecastDays      int     `toml:"forecast_days" validate:"gte=0,lte=10"`
	DailyMode         bool    `toml:"daily_mode"`
	Timezone          string  `toml:"timezone" validate:"required"`

	// Best-condition thresholds, inclusive.
	MinTemperature   float64 `toml:"min_temperature"`
	MaxTemperature   float64 `toml:"max_temperature" validate:"gtefield=MinTemperature"`
	MinHumidity      float64 `toml:"min_humidity" validate:"gte=0,lte=100"`
	MaxHumidity      float64 `toml:"max_humidity" validate:"gtefield=MinHumidity,lte=100"`
	MinWindSpeed     float64 `toml:"min_wind_speed" validate:"gte=0"`
	MaxWindSpeed     float64 `toml:"max_wind_speed" validate:"gtefield=MinWindSpeed"`
	MinPrecipitation float64 `toml:"min_precipitation" validate:"gte=0"`
	MaxPrecipitation float64 `toml:"max_precipitation" validate:"gtefield=MinPrecipitation"`

	LightningEnabled      bool          `toml:"lightning_enabled"`
	LightningRadiusKM     float64       `toml:"lightning_radius_km" validate:"gte=0,lte=2000"`
	LightningLookbackDays int           `toml:"lightning_lookback_days" validate:"gte=1,lte=7"`
	LightningLimit        int           `toml:"lightning_limit" validate:"gte=1,lte=50"`
	LightningTimeout      time.Duration `toml:"-" validate:"gt=0"`
	LightningLoopBudget   time.Duration `toml:"-" validate:"gte=0"`
	SeaLevelTimeout       time.Duration `toml:"-" validate:"gt=0"`

	FMIBaseURL      string        `toml:"fmi_base_url" validate:"required,url"`
	RequestTimeout  time.Duration `toml:"-" validate:"gt=0"`
	RefreshInterval time.Duration `toml:"-" validate:"gte=1m"`
	CycleTimeout    time.Duration `toml:"-" validate:"gt=0"`

	NominatimEnabled   bool          `toml:"nominatim_enabled"`
	NominatimURL       string        `toml:"nominatim_url" validate:"required,url"`
	NominatimUserAgent string        `toml:"nominatim_user_agent" validate:"required_if=NominatimEnabled true"`
	NominatimTimeout   time.Duration `toml:"-" validate:"gt=0"`
	NominatimCacheSize int           `toml:"nominatim_cache_size" validate:"gte=1"`
	NominatimRPS       float64       `toml:"nominatim_rps" validate:"gt=0"`

	KafkaEnabled bool     `toml:"kafka_enabled"`
	KafkaBrokers []string `toml:"-"`
	KafkaTopic   string   `toml:"kafka_topic" validate:"required_if=KafkaEnabled true"`

	HTTPAddr        string        `toml:"http_addr" validate:"required"`
	LogLevel        string        `toml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat       string        `toml:"log_format" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `toml:"-"`

	// Location is Timezone resolved.
	Location *time.Location `toml:"-" validate:"-"`
}

var validate = validator.New()

func defaults() *Config {
	t := domain.DefaultThresholds()
	return &Config{
		ForecastStepHours: 1,
		ForecastDays:      4,
		Timezone:          "Local",

		MinTemperature:   t.MinTemperature,
		MaxTemperature:   t.MaxTemperature,
		MinHumidity:      t.MinHumidity,
		MaxHumidity:      t.MaxHumidity,
		MinWindSpeed:     t.MinWindSpeed,
		MaxWindSpeed:     t.MaxWindSpeed,
		MinPrecipitation: t.MinPrecipitation,
		MaxPrecipitation: t.MaxPrecipitation,

		LightningRadiusKM:     200,
		LightningLookbackDays: 1,
		LightningLimit:        domain.DefaultStrikeLimit,

		FMIBaseURL: "https://opendata.fmi.fi/wfs",

		NominatimEnabled:   true,
		NominatimURL:       "https://nominatim.openstreetmap.org",
		NominatimUserAgent: "fmi-weather-service",
		NominatimCacheSize: 1000,
		NominatimRPS:       1,

		KafkaTopic: "fmi-weather-snapshots",

		HTTPAddr:  ":8080",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load reads .env (if present), the optional CONFIG_FILE, then environment
// variables, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	var fromFile toml.MetaData
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
		fromFile = md
	}

	if os.Getenv("FMI_LATITUDE") == "" && !fromFile.IsDefined("latitude") {
		return nil, errors.New("FMI_LATITUDE is required")
	}
	if os.Getenv("FMI_LONGITUDE") == "" && !fromFile.IsDefined("longitude") {
		return nil, errors.New("FMI_LONGITUDE is required")
	}

	p := &parser{}
	p.float("FMI_LATITUDE", &cfg.Latitude)
	p.float("FMI_LONGITUDE", &cfg.Longitude)
	p.str("FMI_STATION_ID", &cfg.StationID)
	p.int("FMI_FORECAST_STEP_HOURS", &cfg.ForecastStepHours)
	p.int("FMI_FORECAST_DAYS", &cfg.ForecastDays)
	p.bool("FMI_DAILY_MODE", &cfg.DailyMode)
	p.str("FMI_TIMEZONE", &cfg.Timezone)

	p.float("FMI_MIN_TEMP", &cfg.MinTemperature)
	p.float("FMI_MAX_TEMP", &cfg.MaxTemperature)
	p.float("FMI_MIN_HUMIDITY", &cfg.MinHumidity)
	p.float("FMI_MAX_HUMIDITY", &cfg.MaxHumidity)
	p.float("FMI_MIN_WIND_SPEED", &cfg.MinWindSpeed)
	p.float("FMI_MAX_WIND_SPEED", &cfg.MaxWindSpeed)
	p.float("FMI_MIN_PRECIPITATION", &cfg.MinPrecipitation)
	p.float("FMI_MAX_PRECIPITATION", &cfg.MaxPrecipitation)

	p.bool("FMI_LIGHTNING_ENABLED", &cfg.LightningEnabled)
	p.float("FMI_LIGHTNING_RADIUS_KM", &cfg.LightningRadiusKM)
	p.int("FMI_LIGHTNING_LOOKBACK_DAYS", &cfg.LightningLookbackDays)
	p.int("FMI_LIGHTNING_LIMIT", &cfg.LightningLimit)
	p.duration("FMI_LIGHTNING_TIMEOUT", "5s", &cfg.LightningTimeout)
	p.duration("FMI_LIGHTNING_LOOP_BUDGET", "20s", &cfg.LightningLoopBudget)
	p.duration("FMI_SEA_LEVEL_TIMEOUT", "5s", &cfg.SeaLevelTimeout)

	p.str("FMI_BASE_URL", &cfg.FMIBaseURL)
	p.duration("FMI_REQUEST_TIMEOUT", "10s", &cfg.RequestTimeout)
	p.duration("REFRESH_INTERVAL", "30m", &cfg.RefreshInterval)
	p.duration("CYCLE_TIMEOUT", "40s", &cfg.CycleTimeout)

	p.bool("NOMINATIM_ENABLED", &cfg.NominatimEnabled)
	p.str("NOMINATIM_URL", &cfg.NominatimURL)
	p.str("NOMINATIM_USER_AGENT", &cfg.NominatimUserAgent)
	p.duration("NOMINATIM_TIMEOUT", "5s", &cfg.NominatimTimeout)
	p.int("NOMINATIM_CACHE_SIZE", &cfg.NominatimCacheSize)
	p.float("NOMINATIM_RPS", &cfg.NominatimRPS)

	p.bool("KAFKA_ENABLED", &cfg.KafkaEnabled)
	p.str("KAFKA_TOPIC", &cfg.KafkaTopic)
	cfg.KafkaBrokers = sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092"))

	p.str("HTTP_ADDR", &cfg.HTTPAddr)
	p.str("LOG_LEVEL", &cfg.LogLevel)
	p.str("LOG_FORMAT", &cfg.LogFormat)

	if p.err != nil {
		return nil, p.err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdownTimeout

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FMI_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

// Coordinate returns the configured home location.
func (c *Config) Coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: c.Latitude, Lon: c.Longitude}
}

// Thresholds returns the configured best-condition window.
func (c *Config) Thresholds() domain.Thresholds {
	return domain.Thresholds{
		MinTemperature:   c.MinTemperature,
		MaxTemperature:   c.MaxTemperature,
		MinHumidity:      c.MinHumidity,
		MaxHumidity:      c.MaxHumidity,
		MinWindSpeed:     c.MinWindSpeed,
		MaxWindSpeed:     c.MaxWindSpeed,
		MinPrecipitation: c.MinPrecipitation,
		MaxPrecipitation: c.MaxPrecipitation,
	}
}

// parser applies environment overrides, keeping the first error.
type parser struct {
	err error
}

func (p *parser) str(key string, dst *string) {
	*dst = sharedcfg.EnvOrDefault(key, *dst)
}

func (p *parser) float(key string, dst *float64) {
	s := os.Getenv(key)
	if s == "" || p.err != nil {
		return
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dst = v
}

func (p *parser) int(key string, dst *int) {
	s := os.Getenv(key)
	if s == "" || p.err != nil {
		return
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dst = v
}

func (p *parser) bool(key string, dst *bool) {
	s := os.Getenv(key)
	if s == "" || p.err != nil {
		return
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dst = v
}

// duration always sets dst, using def when the variable is unset.
func (p *parser) duration(key, def string, dst *time.Duration) {
	if p.err != nil {
		return
	}
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dst = d
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Global Wind Atlas client configuration.
	GWABaseURL        string
	GWATimeout        time.Duration
	GWACacheSize      int
	GWABreakerTimeout time.Duration

	// GWCFile replaces the atlas client with a static grid when set.
	GWCFile string

	AirDensity         float64
	TurbineConcurrency int
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is read first when present; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	gwaTimeout, err := parsePositiveDuration("GWA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	breakerTimeout, err := parsePositiveDuration("GWA_BREAKER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	airDensity, err := parseAirDensity()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "site-assessment-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "site-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "wind-yield"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		GWABaseURL:        sharedcfg.EnvOrDefault("GWA_BASE_URL", "https://globalwindatlas.info/api/gwa/custom/Lib/"),
		GWATimeout:        gwaTimeout,
		GWACacheSize:      parsePositiveInt("GWA_CACHE_SIZE", 256),
		GWABreakerTimeout: breakerTimeout,
		GWCFile:           os.Getenv("GWC_FILE"),

		AirDensity:         airDensity,
		TurbineConcurrency: parsePositiveInt("TURBINE_CONCURRENCY", 4),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.GWCFile == "" && cfg.GWABaseURL == "" {
		return nil, errors.New("GWA_BASE_URL is required when GWC_FILE is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseAirDensity() (float64, error) {
	s := sharedcfg.EnvOrDefault("AIR_DENSITY", "1.225")
	rho, err := strconv.ParseFloat(s, 64)
	if err != nil || !(rho > 0) || rho > 2 {
		return 0, fmt.Errorf("invalid AIR_DENSITY %q: want kg/m^3 in (0, 2]", s)
	}
	return rho, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultArchiveURL is the published MAN version 3 archive.
const DefaultArchiveURL = "https://aeronet.gsfc.nasa.gov/new_web/All_MAN_Data_V3.tar.gz"

const maxWorkers = 256

// Config holds all run settings, populated from environment variables and
// optionally overridden by command line flags.
type Config struct {
	SourceDir       string
	IntermediateDir string
	ArchiveURL      string
	ArchiveRetries  int
	DatabaseURL     string

	Workers    int
	BatchSize  int
	RunTimeout time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka notifications are disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers(sharedcfg.EnvOrDefault("WORKERS", "6"))
	if err != nil {
		return nil, err
	}

	retries, err := strconv.Atoi(sharedcfg.EnvOrDefault("ARCHIVE_RETRIES", "3"))
	if err != nil || retries < 0 {
		return nil, errors.New("invalid ARCHIVE_RETRIES")
	}

	runTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_TIMEOUT", "0s"))
	if err != nil || runTimeout < 0 {
		return nil, errors.New("invalid RUN_TIMEOUT")
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		SourceDir:       sharedcfg.EnvOrDefault("SOURCE_DIR", "./src"),
		IntermediateDir: sharedcfg.EnvOrDefault("INTERMEDIATE_DIR", "./src_csvs"),
		ArchiveURL:      sharedcfg.EnvOrDefault("ARCHIVE_URL", DefaultArchiveURL),
		ArchiveRetries:  retries,
		DatabaseURL:     sharedcfg.EnvOrDefault("DATABASE_URL", "postgres://localhost:5432/maritime?sslmode=disable"),

		Workers:    workers,
		BatchSize:  batchSize,
		RunTimeout: runTimeout,

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaTopic: sharedcfg.EnvOrDefault("KAFKA_TOPIC", "maritime-ingest-events"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}
	if _, set := os.LookupEnv("HTTP_ADDR"); !set {
		cfg.HTTPAddr = ":8080"
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.SourceDir == "" {
		return nil, errors.New("SOURCE_DIR is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// Overrides carries command line values that take precedence over the
// environment. Zero values leave the loaded setting untouched.
type Overrides struct {
	Workers         int
	SourceDir       string
	IntermediateDir string
}

// Apply merges o into c.
func (c *Config) Apply(o Overrides) error {
	if o.Workers != 0 {
		if o.Workers < 1 || o.Workers > maxWorkers {
			return fmt.Errorf("--workers must be between 1 and %d", maxWorkers)
		}
		c.Workers = o.Workers
	}
	if o.SourceDir != "" {
		c.SourceDir = o.SourceDir
	}
	if o.IntermediateDir != "" {
		c.IntermediateDir = o.IntermediateDir
	}
	return nil
}

// NotificationsEnabled reports whether run events are published to Kafka.
func (c *Config) NotificationsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseWorkers(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxWorkers {
		return 0, fmt.Errorf("invalid WORKERS %q: must be between 1 and %d", s, maxWorkers)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

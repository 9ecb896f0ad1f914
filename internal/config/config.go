package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultMeteostatURL is the RapidAPI endpoint of the Meteostat JSON API.
const DefaultMeteostatURL = "https://meteostat.p.rapidapi.com"

// Config holds all batch settings, populated from environment variables.
type Config struct {
	StartYear     int
	EndYear       int
	OutputPath    string
	LocationsFile string

	// Meteostat API configuration.
	MeteostatBaseURL  string
	MeteostatAPIKey   string
	MeteostatTimeout  time.Duration
	StationCandidates int
	NearbyPoolSize    int
	CacheTTL          time.Duration

	Workers int

	// Optional sinks; empty disables them.
	SQLitePath   string
	KafkaBrokers []string
	KafkaTopic   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	startYear, err := parseInt("START_YEAR", 2021)
	if err != nil {
		return nil, err
	}
	endYear, err := parseInt("END_YEAR", 2023)
	if err != nil {
		return nil, err
	}

	meteostatTimeout, err := parseDuration("METEOSTAT_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	candidates, err := parseInt("STATION_CANDIDATES", 10)
	if err != nil {
		return nil, err
	}
	poolSize, err := parseInt("NEARBY_POOL_SIZE", 50)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("WORKERS", 1)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		StartYear:     startYear,
		EndYear:       endYear,
		OutputPath:    sharedcfg.EnvOrDefault("OUTPUT_PATH", "mlb_weather_data_2021_to_2023.csv"),
		LocationsFile: os.Getenv("LOCATIONS_FILE"),

		MeteostatBaseURL:  sharedcfg.EnvOrDefault("METEOSTAT_BASE_URL", DefaultMeteostatURL),
		MeteostatAPIKey:   os.Getenv("METEOSTAT_API_KEY"),
		MeteostatTimeout:  meteostatTimeout,
		StationCandidates: candidates,
		NearbyPoolSize:    poolSize,
		CacheTTL:          cacheTTL,

		Workers: workers,

		SQLitePath:   os.Getenv("SQLITE_PATH"),
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "stadium-daily-weather"),

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StartYear < 1800 || c.EndYear > 9999 {
		return errors.New("START_YEAR and END_YEAR must be four-digit years")
	}
	if c.StartYear > c.EndYear {
		return fmt.Errorf("START_YEAR %d is after END_YEAR %d", c.StartYear, c.EndYear)
	}
	if c.OutputPath == "" {
		return errors.New("OUTPUT_PATH is required")
	}
	if c.MeteostatBaseURL == DefaultMeteostatURL && c.MeteostatAPIKey == "" {
		return errors.New("METEOSTAT_API_KEY is required for the RapidAPI endpoint")
	}
	if c.StationCandidates < 1 {
		return errors.New("STATION_CANDIDATES must be positive")
	}
	if c.NearbyPoolSize < c.StationCandidates {
		return errors.New("NEARBY_POOL_SIZE must be at least STATION_CANDIDATES")
	}
	if c.Workers < 1 || c.Workers > 32 {
		return errors.New("WORKERS must be between 1 and 32")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting used by the CLI and the server. Zero values for
// the connection strings mean "not configured".
type Config struct {
	DatabaseURL      string
	RedisURL         string
	BearerToken      string
	Port             string
	TimeAndDateURL   string
	CountryMarker    string
	HTTPTimeout      time.Duration
	FetchRetries     int
	FetchDelay       time.Duration
	ForecastCacheTTL time.Duration
	MigrationsDir    string
}

// Load reads the environment, applying defaults for unset values. Malformed
// numbers and durations are reported rather than silently replaced.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		BearerToken:    os.Getenv("BEARER_TOKEN"),
		Port:           getEnv("PORT", "8080"),
		TimeAndDateURL: strings.TrimRight(getEnv("TIMEANDDATE_URL", "https://www.timeanddate.com"), "/"),
		CountryMarker:  getEnv("COUNTRY_MARKER", "USA"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
	}

	var err error
	if cfg.HTTPTimeout, err = getEnvDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.FetchRetries, err = getEnvInt("FETCH_RETRIES", 3); err != nil {
		errs = append(errs, err)
	}
	delayMS, err := getEnvInt("FETCH_DELAY_MS", 1000)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.FetchDelay = time.Duration(delayMS) * time.Millisecond
	if cfg.ForecastCacheTTL, err = getEnvDuration("FORECAST_CACHE_TTL", time.Hour); err != nil {
		errs = append(errs, err)
	}

	return cfg, errors.Join(errs...)
}

// RequireServer reports the settings the HTTP service cannot run without.
func (c Config) RequireServer() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.BearerToken == "" {
		missing = append(missing, "BEARER_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

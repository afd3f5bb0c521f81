// Package config loads shelfscan settings from the environment. A .env file is
// loaded into the environment by the root command before Load runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port              string        `validate:"required,numeric"`
	Provider          string        `validate:"oneof=openlibrary googlebooks"`
	UserAgent         string        `validate:"required"`
	LookupTimeout     time.Duration `validate:"gt=0s"`
	LookupRPS         float64       `validate:"gt=0"`
	MaxUploadMB       int           `validate:"gte=1,lte=100"`
	SessionTTL        time.Duration `validate:"gt=0s"`
	GoogleBooksAPIKey string
	LogLevel          string `validate:"oneof=debug info warn warning error"`
	LogFormat         string `validate:"oneof=text json"`
}

// Load reads SHELFSCAN_* and related variables, falling back to defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("SHELFSCAN_PORT", "8888"),
		Provider:          strings.ToLower(getEnv("SHELFSCAN_PROVIDER", "openlibrary")),
		UserAgent:         getEnv("SHELFSCAN_USER_AGENT", "shelfscan/0.1.0"),
		GoogleBooksAPIKey: os.Getenv("GOOGLE_BOOKS_API_KEY"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var errs []error
	var err error
	if cfg.LookupTimeout, err = getDuration("SHELFSCAN_LOOKUP_TIMEOUT", 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = getDuration("SHELFSCAN_SESSION_TTL", 12*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxUploadMB, err = getInt("SHELFSCAN_MAX_UPLOAD_MB", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.LookupRPS, err = getFloat("SHELFSCAN_LOOKUP_RPS", 1); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", e.Field(), e.Tag(), e.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// MaxUploadBytes is the upload cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

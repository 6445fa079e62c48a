package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development" validate:"oneof=development staging production test"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080" validate:"required"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s" validate:"gt=0"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"90s" validate:"gt=0"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"75s" validate:"gt=0"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty" validate:"oneof=pretty json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// RedisAddr enables the CSV cache when set.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	FetchTimeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s" validate:"gt=0"`
	FetchConcurrency  int           `envconfig:"FETCH_CONCURRENCY" default:"4" validate:"min=1,max=32"`
	FetchMaxBodyBytes int64         `envconfig:"FETCH_MAX_BODY_BYTES" default:"10485760" validate:"min=1024"`
	FetchCacheTTL     time.Duration `envconfig:"FETCH_CACHE_TTL" default:"5m" validate:"gte=0"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60" validate:"gte=0"`

	ReportTitle         string `envconfig:"REPORT_TITLE" default:"REPORTE DE TRANSACCIONES"`
	ReportTreasurer     string `envconfig:"REPORT_TREASURER" default:"JUAN PABLO BARBA MEDINA"`
	ReportTimezone      string `envconfig:"REPORT_TIMEZONE" default:"America/Guayaquil" validate:"timezone"`
	ReportObservations  bool   `envconfig:"REPORT_OBSERVATIONS" default:"true"`
	DatasetKeywordsFile string `envconfig:"DATASET_KEYWORDS_FILE"`
}

var configValidator = validator.New()

// LoadConfig reads configuration from a local .env file, when present, and
// environment variables. Variables already set in the environment win.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	// PORT is what most hosting platforms inject.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && os.Getenv("APP_ADDR") == "" {
		cfg.AppAddr = ":" + port
	}
	if err := configValidator.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location returns the report time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.ReportTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

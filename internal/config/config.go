package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

var globalConfig *Config

// Config holds all environment backed configuration for the chat service.
type Config struct {
	// HTTP Server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8080"`
	RequestsPerMinute  float64  `env:"REQUESTS_PER_MINUTE" envDefault:"120"`
	EnableSwagger      bool     `env:"ENABLE_SWAGGER" envDefault:"true"`

	// PostgreSQL
	DatabaseURL     string        `env:"DATABASE_URL,notEmpty"`
	DatabaseReadURL string        `env:"DATABASE_READ_URL"`
	DBMaxIdle       int           `env:"DB_MAX_IDLE" envDefault:"10"`
	DBMaxOpen       int           `env:"DB_MAX_OPEN" envDefault:"25"`
	DBMaxLifetime   time.Duration `env:"DB_MAX_LIFETIME" envDefault:"1h"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	// Auth
	AuthJWTSecret       string        `env:"AUTH_JWT_SECRET"`
	JWKSURL             string        `env:"JWKS_URL"`
	AuthIssuer          string        `env:"AUTH_ISSUER"`
	AuthAudience        string        `env:"AUTH_AUDIENCE"`
	RefreshJWKSInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	AuthClockSkew       time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"30s"`

	// Completion provider (OpenRouter compatible)
	OpenRouterAPIKey   string        `env:"OPENROUTER_API_KEY,notEmpty"`
	OpenRouterBaseURL  string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterReferer  string        `env:"OPENROUTER_REFERER" envDefault:"http://localhost:3000"`
	OpenRouterAppTitle string        `env:"OPENROUTER_APP_TITLE" envDefault:"Persona AI"`
	UpstreamTimeout    time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"120s"`
	StreamChunkDelay   time.Duration `env:"STREAM_CHUNK_DELAY" envDefault:"0s"`

	// Models and quota
	DefaultModel      string   `env:"DEFAULT_MODEL" envDefault:"google/gemini-2.0-flash-001"`
	AllowedModels     []string `env:"ALLOWED_MODELS" envSeparator:","`
	TitleModel        string   `env:"TITLE_MODEL" envDefault:"google/gemini-2.0-flash-001"`
	DailyMessageLimit int      `env:"DAILY_MESSAGE_LIMIT" envDefault:"15"`

	// Title generation worker
	TitleWorkerCount int           `env:"TITLE_WORKER_COUNT" envDefault:"2"`
	TitleQueueSize   int           `env:"TITLE_QUEUE_SIZE" envDefault:"128"`
	TitleTaskTimeout time.Duration `env:"TITLE_TASK_TIMEOUT" envDefault:"20s"`

	// Usage ledger retention
	UsageRetentionDays int `env:"USAGE_RETENTION_DAYS" envDefault:"30"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"persona-chat"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"persona"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
	LogContentLevel  string `env:"LOG_CONTENT_LEVEL" envDefault:"hashed"`
	LogContentSalt   string `env:"LOG_CONTENT_SALT" envDefault:"persona-chat"`

	// Internal
	EnvReloadedAt time.Time
}

// LoadEnvFiles overlays .env files found in the working directory or its parent.
func LoadEnvFiles() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.AuthJWTSecret == "" && c.JWKSURL == "" {
		return errors.New("either AUTH_JWT_SECRET or JWKS_URL must be provided")
	}
	if c.JWKSURL != "" {
		if _, err := url.ParseRequestURI(c.JWKSURL); err != nil {
			return fmt.Errorf("invalid JWKS_URL: %w", err)
		}
	}
	if _, err := url.ParseRequestURI(c.OpenRouterBaseURL); err != nil {
		return fmt.Errorf("invalid OPENROUTER_BASE_URL: %w", err)
	}

	c.DefaultModel = strings.TrimSpace(c.DefaultModel)
	c.TitleModel = strings.TrimSpace(c.TitleModel)
	c.AllowedModels = compact(c.AllowedModels)
	if len(c.AllowedModels) > 0 && !slices.Contains(c.AllowedModels, c.DefaultModel) {
		return fmt.Errorf("DEFAULT_MODEL %q is not in ALLOWED_MODELS", c.DefaultModel)
	}

	if c.DailyMessageLimit <= 0 {
		return errors.New("DAILY_MESSAGE_LIMIT must be positive")
	}
	if c.TitleWorkerCount <= 0 {
		c.TitleWorkerCount = 1
	}
	if c.TitleQueueSize <= 0 {
		c.TitleQueueSize = 1
	}
	if c.UsageRetentionDays < 30 {
		// the stats endpoint reads a 30 day window
		c.UsageRetentionDays = 30
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.EnvReloadedAt = time.Now()
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// GetGlobal returns the most recently loaded config.
func GetGlobal() *Config {
	return globalConfig
}

// GetEnvReloadedAt returns when the environment was last reloaded
func GetEnvReloadedAt() time.Time {
	if globalConfig != nil {
		return globalConfig.EnvReloadedAt
	}
	return time.Time{}
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}

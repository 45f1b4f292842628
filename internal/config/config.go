package config

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the service. It is loaded once at
// startup and treated as immutable afterwards.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	GRPCAddr          string        `envconfig:"GRPC_ADDR"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PGDSN          string `envconfig:"PG_DSN"`
	PGMaxOpenConns int    `envconfig:"PG_MAX_OPEN_CONNS" default:"20"`

	JWTSecret  string `envconfig:"JWT_SECRET" required:"true"`
	BcryptCost int    `envconfig:"BCRYPT_COST" default:"12"`

	CORSAllowedOrigins     []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	RateLimitRPS           int      `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst         int      `envconfig:"RATE_LIMIT_BURST" default:"40"`
	AuthRateLimitPerMinute int      `envconfig:"AUTH_RATE_LIMIT_PER_MINUTE" default:"20"`
	MaxBodyBytes           int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET must be provided")
	}
	if cfg.IsProduction() && strings.TrimSpace(cfg.PGDSN) == "" {
		return nil, errors.New("PG_DSN must be provided in production")
	}
	return &cfg, nil
}

// IsProduction returns true when the service runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// IsDevelopment gates detailed error messages in responses.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	// BaseURL is used to build the password-reset links sent by email.
	BaseURL string `env:"APP_BASE_URL, default=http://localhost:8080"`

	TokenTTL      time.Duration `env:"TOKEN_TTL,       default=1h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL, default=10m"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:3000"`

	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ops_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM, default=no-reply@zabotech.io"`
}

// RateLimitConfig holds per-minute request caps per client IP.
type RateLimitConfig struct {
	PerMinute      int `env:"RATE_LIMIT_PER_MIN,       default=300"`
	AuthPerMinute  int `env:"RATE_LIMIT_AUTH_PER_MIN,  default=30"`
	ResetPerMinute int `env:"RATE_LIMIT_RESET_PER_MIN, default=5"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the service configuration read from the environment.
type Config struct {
	Port     string `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DatabaseURL wins over the DB_* parts when set.
	DatabaseURL string `env:"DATABASE_URL"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`

	DBAutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`

	AdminPassword string `env:"ADMIN_PASSWORD,required,notEmpty"`

	NATSURL string `env:"NATS_URL"`

	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"true"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"jaeger:4317"`

	RateLimitMax        int           `env:"RATE_LIMIT_MAX" envDefault:"20"`
	RateLimitExpiration time.Duration `env:"RATE_LIMIT_EXPIRATION" envDefault:"60s"`

	S3 S3Config
}

type S3Config struct {
	Endpoint     string `env:"S3_ENDPOINT"`
	Region       string `env:"AWS_REGION" envDefault:"us-east-1"`
	BucketName   string `env:"S3_BUCKET_NAME"`
	AccessKey    string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE"`
}

// Enabled reports whether photo uploads can be presigned.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.BucketName != ""
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DatabaseURL == "" && (cfg.DBUser == "" || cfg.DBName == "") {
		return nil, fmt.Errorf("either DATABASE_URL or DB_USER and DB_NAME must be set")
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX: %d", cfg.RateLimitMax)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

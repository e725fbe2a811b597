package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// JWTSecret verifies bearer tokens issued by the identity provider.
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// AnalyticsRole gates the analytics and knowledge admin endpoints.
	AnalyticsRole string `envconfig:"ANALYTICS_ROLE" default:"admin"`

	// RateLimitPath is the Badger directory for rate-limit counters.
	// Empty runs the counter store in memory; counters are ephemeral
	// either way and may reset on restart.
	RateLimitPath string `envconfig:"RATE_LIMIT_PATH"`

	// Per-endpoint fixed-window quotas, requests per window.
	SessionRateLimit  int `envconfig:"SESSION_RATE_LIMIT" default:"10"`
	MessageRateLimit  int `envconfig:"MESSAGE_RATE_LIMIT" default:"20"`
	FAQRateLimit      int `envconfig:"FAQ_RATE_LIMIT" default:"30"`
	RateLimitWindowS  int `envconfig:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`

	// AnalyticsRetentionDays bounds how long raw analytics events are kept.
	AnalyticsRetentionDays int `envconfig:"ANALYTICS_RETENTION_DAYS" default:"365"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("KRAFTCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// config/config.go - Environment-driven configuration
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                 string
	DBPath               string
	StripeSecretKey      string
	StripeWebhookSecret  string
	ClientURL            string
	Currency             string
	OutstandingThreshold time.Duration
	SweepSpec            string
}

// Load reads configuration from the environment with local-dev defaults.
func Load() Config {
	return Config{
		Port:                 read("PORT", "8080"),
		DBPath:               read("DB_PATH", "data/officeflow.db"),
		StripeSecretKey:      read("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:  read("STRIPE_WEBHOOK_SECRET", ""),
		ClientURL:            read("CLIENT_URL", "http://localhost:3000"),
		Currency:             read("CURRENCY", "inr"),
		OutstandingThreshold: readDurationHours("OUTSTANDING_THRESHOLD_HOURS", 24),
		SweepSpec:            read("SWEEP_SPEC", "@hourly"),
	}
}

func read(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func readDurationHours(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return time.Duration(fallback) * time.Hour
}

// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           int
	DBPath         string
	JWTSecret      string
	TokenTTL       time.Duration
	StripeKey      string
	AllowedOrigins []string
}

// Load reads the configuration from the environment, falling back to
// development defaults for everything except the secrets. JWT_SECRET and
// STRIPE_SECRET_KEY have no defaults; the server decides at startup what to
// do when they are absent.
func Load() Config {
	return Config{
		Port:           envInt("PORT", 5000),
		DBPath:         envString("DB_PATH", "data/chatterpoint.db"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       envDuration("TOKEN_TTL", 12*time.Hour),
		StripeKey:      os.Getenv("STRIPE_SECRET_KEY"),
		AllowedOrigins: envList("ALLOWED_ORIGINS", []string{"*"}),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// envList parses a comma-separated value, trimming whitespace around each
// element. Empty elements are dropped.
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Package config loads service configuration from the environment. A .env
// file is honored when present so local development matches production.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddress   = ":3000"
	defaultAccessTTL = 15 * time.Minute
)

// Config holds everything the process needs to start.
type Config struct {
	Address            string
	MongoURI           string
	MongoDatabase      string
	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
}

// Load reads configuration from the environment, loading a .env file first
// if one exists. Missing secrets or the store URI are hard errors.
func Load() (*Config, error) {
	_ = godotenv.Load() // ok if missing in prod

	cfg := &Config{
		Address:            envOr("ADDRESS", defaultAddress),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDatabase:      envOr("MONGO_DATABASE", "accountd"),
		AccessTokenSecret:  os.Getenv("JWT_ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:     defaultAccessTTL,
		RefreshTokenSecret: os.Getenv("JWT_REFRESH_TOKEN_SECRET"),
	}

	for k, v := range map[string]string{
		"MONGO_URI":                cfg.MongoURI,
		"JWT_ACCESS_TOKEN_SECRET":  cfg.AccessTokenSecret,
		"JWT_REFRESH_TOKEN_SECRET": cfg.RefreshTokenSecret,
	} {
		if v == "" {
			return nil, fmt.Errorf("config: missing required env %s", k)
		}
	}

	if raw := os.Getenv("JWT_ACCESS_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid JWT_ACCESS_TOKEN_TTL %q: %w", raw, err)
		}
		cfg.AccessTokenTTL = ttl
	}

	return cfg, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

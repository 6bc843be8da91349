// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Upstream application fronted by the gateway.
	UpstreamURL string

	// Supabase settings. SupabaseURL plus AnonKey serve the public client;
	// ServiceKey authorizes the admin client. JWTSecret enables local
	// verification of access tokens without a round trip to GoTrue.
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	SupabaseJWTSecret  string

	// Database settings. Optional: when empty, role lookups and analytics
	// writes go through the Supabase REST API instead of direct Postgres.
	DatabaseURL string

	// Analytics spool. When set, AI session records are appended to a local
	// SQLite file whenever no primary sink is configured.
	SpoolPath string

	// Internal API key protecting /internal endpoints. Stored hashed in
	// memory; empty disables the endpoints.
	InternalAPIKey string

	// Role cache TTL. Zero disables caching (one lookup per request).
	RoleCacheTTL time.Duration

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:               envInt("STUDIOGATE_PORT", 8080),
		ReadTimeout:        envDuration("STUDIOGATE_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:       envDuration("STUDIOGATE_WRITE_TIMEOUT", 30*time.Second),
		UpstreamURL:        envStr("STUDIOGATE_UPSTREAM_URL", "http://localhost:3000"),
		SupabaseURL:        envStr("SUPABASE_URL", ""),
		SupabaseAnonKey:    envStr("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: envStr("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:  envStr("SUPABASE_JWT_SECRET", ""),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		SpoolPath:          envStr("STUDIOGATE_SPOOL_PATH", ""),
		InternalAPIKey:     envStr("STUDIOGATE_INTERNAL_API_KEY", ""),
		RoleCacheTTL:       envDuration("STUDIOGATE_ROLE_CACHE_TTL", 0),
		OTELEndpoint:       envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:       envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:        envStr("OTEL_SERVICE_NAME", "studiogate"),
		LogLevel:           envStr("STUDIOGATE_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that must be well-formed at startup. Supabase
// credentials are deliberately not required here: their absence is reported
// at first client construction so a partially configured process can still
// serve ungated routes.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: STUDIOGATE_PORT out of range: %d", c.Port)
	}
	if _, err := url.Parse(c.UpstreamURL); err != nil {
		return fmt.Errorf("config: STUDIOGATE_UPSTREAM_URL invalid: %w", err)
	}
	if c.RoleCacheTTL < 0 {
		return fmt.Errorf("config: STUDIOGATE_ROLE_CACHE_TTL must not be negative")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/adhocore/gronx"
	"github.com/joho/godotenv"
)

// Platform backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Host platform emulation: "postgres" or "memory"
	PlatformBackend string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey record store
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int
	ValkeyPrefix   string

	// Account janitor
	JanitorCron              string
	JanitorPageSize          int
	JanitorLookupConcurrency int

	// Game limits
	MaxCategoriesPerUser int
	RateLimitRPS         float64
	RateLimitBurst       int

	// Shared secret the host sends on webhook calls. Empty disables the check.
	HookToken string
}

// Load reads configuration from a .env file if present and then from the
// environment. Values already set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		PlatformBackend: envOrDefault("PLATFORM_BACKEND", BackendPostgres),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "wordcats"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "wordcats"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyPrefix:   os.Getenv("VALKEY_PREFIX"),

		JanitorCron: envOrDefault("JANITOR_CRON", "0 3 * * *"),

		HookToken: os.Getenv("HOOK_TOKEN"),
	}

	var err error
	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"VALKEY_DB", 0, &cfg.ValkeyDB},
		{"JANITOR_PAGE_SIZE", 100, &cfg.JanitorPageSize},
		{"JANITOR_LOOKUP_CONCURRENCY", 8, &cfg.JanitorLookupConcurrency},
		{"MAX_CATEGORIES_PER_USER", 50, &cfg.MaxCategoriesPerUser},
		{"RATE_LIMIT_BURST", 10, &cfg.RateLimitBurst},
	}
	for _, v := range ints {
		if *v.dst, err = envInt(v.key, v.fallback); err != nil {
			return nil, err
		}
	}
	if cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	if !gronx.IsValid(cfg.JanitorCron) {
		return nil, fmt.Errorf("JANITOR_CRON: invalid cron expression %q", cfg.JanitorCron)
	}
	if cfg.JanitorPageSize < 1 {
		return nil, fmt.Errorf("JANITOR_PAGE_SIZE must be positive")
	}
	if cfg.JanitorLookupConcurrency < 1 {
		return nil, fmt.Errorf("JANITOR_LOOKUP_CONCURRENCY must be positive")
	}
	switch cfg.PlatformBackend {
	case BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("PLATFORM_BACKEND must be %q or %q", BackendPostgres, BackendMemory)
	}

	if cfg.Env == "production" {
		if cfg.PlatformBackend == BackendPostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.HookToken == "" {
			return nil, fmt.Errorf("HOOK_TOKEN must be set in production")
		}
		if cfg.PlatformBackend == BackendMemory {
			return nil, fmt.Errorf("PLATFORM_BACKEND=memory is not allowed in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// Package config loads the data-access layer configuration from the
// environment. A .env file is honored when present; real environment
// variables win.
package config

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config is the environment-sourced configuration. OptimizationLevel and
// CacheEnabled decide the repository wiring once at startup and stay fixed
// for the process lifetime.
type Config struct {
	// OptimizationLevel selects the repository variant: basic, optimized, full.
	OptimizationLevel string

	// QueryMonitoring enables the performance monitor's periodic timers.
	QueryMonitoring bool

	// SlowQueryThreshold overrides the slow-query cutoff.
	SlowQueryThreshold time.Duration

	// CacheEnabled globally bypasses the cache manager when false.
	CacheEnabled bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	L1Capacity int
	L1TTL      time.Duration
	L2TTL      time.Duration

	DatabaseDriver string
	DatabaseDSN    string

	Environment string
}

// Load reads the environment, applying defaults for anything unset.
func Load() (Config, error) {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		OptimizationLevel:  getEnv("OPTIMIZATION_LEVEL", "optimized"),
		QueryMonitoring:    getBool("QUERY_MONITORING", true),
		SlowQueryThreshold: time.Duration(getInt("SLOW_QUERY_THRESHOLD", 1000)) * time.Millisecond,
		CacheEnabled:       getBool("CACHE_ENABLED", true),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getInt("REDIS_DB", 0),
		L1Capacity:         getInt("CACHE_L1_CAPACITY", 10000),
		L1TTL:              time.Duration(getInt("CACHE_L1_TTL", 60)) * time.Second,
		L2TTL:              time.Duration(getInt("CACHE_L2_TTL", 1800)) * time.Second,
		DatabaseDriver:     getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "file::memory:?cache=shared"),
		Environment:        getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.OptimizationLevel, validation.Required, validation.In("basic", "optimized", "full")),
		validation.Field(&c.DatabaseDriver, validation.Required, validation.In("sqlite3", "postgres")),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.RedisAddr, validation.Required),
		validation.Field(&c.L1Capacity, validation.Min(1)),
		validation.Field(&c.SlowQueryThreshold, validation.Min(time.Millisecond)),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

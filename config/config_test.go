package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with defaults failed: %v", err)
	}

	if cfg.OptimizationLevel != "optimized" {
		t.Errorf("expected default level optimized, got %s", cfg.OptimizationLevel)
	}
	if !cfg.QueryMonitoring {
		t.Error("expected monitoring on by default")
	}
	if cfg.SlowQueryThreshold != time.Second {
		t.Errorf("expected 1s slow threshold, got %s", cfg.SlowQueryThreshold)
	}
	if !cfg.CacheEnabled {
		t.Error("expected cache on by default")
	}
	if cfg.DatabaseDriver != "sqlite3" {
		t.Errorf("expected sqlite3 driver, got %s", cfg.DatabaseDriver)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis addr %s", cfg.RedisAddr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPTIMIZATION_LEVEL", "full")
	t.Setenv("QUERY_MONITORING", "false")
	t.Setenv("SLOW_QUERY_THRESHOLD", "250")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_L1_CAPACITY", "500")
	t.Setenv("REDIS_ADDR", "cache.internal:6380")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.OptimizationLevel != "full" {
		t.Errorf("expected full, got %s", cfg.OptimizationLevel)
	}
	if cfg.QueryMonitoring {
		t.Error("expected monitoring off")
	}
	if cfg.SlowQueryThreshold != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.SlowQueryThreshold)
	}
	if cfg.CacheEnabled {
		t.Error("expected cache off")
	}
	if cfg.L1Capacity != 500 {
		t.Errorf("expected capacity 500, got %d", cfg.L1Capacity)
	}
	if cfg.RedisAddr != "cache.internal:6380" {
		t.Errorf("unexpected redis addr %s", cfg.RedisAddr)
	}
	if cfg.Environment != "production" {
		t.Errorf("unexpected environment %s", cfg.Environment)
	}
}

func TestLoad_InvalidLevelRejected(t *testing.T) {
	t.Setenv("OPTIMIZATION_LEVEL", "turbo")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for unknown level")
	}
}

func TestLoad_InvalidDriverRejected(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for unsupported driver")
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("QUERY_MONITORING", "not-a-bool")
	t.Setenv("SLOW_QUERY_THRESHOLD", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.QueryMonitoring {
		t.Error("malformed bool must fall back to the default")
	}
	if cfg.SlowQueryThreshold != time.Second {
		t.Errorf("malformed int must fall back to the default, got %s", cfg.SlowQueryThreshold)
	}
}

func TestValidate_CapacityBound(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cfg.L1Capacity = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero capacity")
	}
}

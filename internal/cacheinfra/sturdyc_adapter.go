package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// L1Config holds the settings for the process-local tier.
type L1Config struct {
	// Capacity is the maximum number of entries the cache can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines how many shards back the cache. Higher values
	// improve concurrency at the cost of memory. Must be greater than 0.
	NumShards int

	// TTL is the cache-wide time-to-live. sturdyc applies one TTL per client,
	// so this bounds every L1 entry regardless of the per-operation TTL the
	// manager uses for L2. Keep it short; L1 is the volatile tier.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache hits
	// capacity. Must be between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are scanned out.
	// Zero uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultL1Config returns the settings we run with in production.
func DefaultL1Config() L1Config {
	return L1Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c L1Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError reports an invalid adapter configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycBackend adapts a sturdyc client to the cache.Backend contract.
// sturdyc gives us sharded storage, capacity-based eviction and expiry scans
// without any locking of our own.
type SturdycBackend struct {
	client *sturdyc.Client[[]byte]
}

// NewSturdycBackend validates cfg and builds the L1 backend.
func NewSturdycBackend(cfg L1Config) (*SturdycBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &SturdycBackend{client: client}, nil
}

// Get returns the entry for key, or absent. A local lookup cannot fail, so
// the error is always nil.
func (b *SturdycBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := b.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under key. The per-call ttl is ignored; sturdyc applies
// the client-wide TTL configured for this tier.
func (b *SturdycBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	b.client.Set(key, value)
	return nil
}

// Delete evicts key.
func (b *SturdycBackend) Delete(_ context.Context, key string) error {
	b.client.Delete(key)
	return nil
}

// Size reports the current entry count, used by operational reports.
func (b *SturdycBackend) Size() int {
	return b.client.Size()
}

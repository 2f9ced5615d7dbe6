package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/varlab/genomecache/cache"
)

// L2Config holds the settings for the shared Redis tier.
type L2Config struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces every key so multiple deployments can share one
	// Redis instance.
	KeyPrefix string

	// OpTimeout bounds each round-trip. A slow shared cache must never cost
	// more than a fresh read from the base store; on timeout the manager
	// treats the access as a miss.
	OpTimeout time.Duration
}

// DefaultL2Config returns the settings we run with in production.
func DefaultL2Config() L2Config {
	return L2Config{
		Addr:      "localhost:6379",
		KeyPrefix: "genomecache:",
		OpTimeout: 250 * time.Millisecond,
	}
}

// Validate checks the configuration values.
func (c L2Config) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "must not be empty"}
	}
	if c.OpTimeout <= 0 {
		return &ConfigError{Field: "OpTimeout", Message: "must be greater than 0"}
	}
	return nil
}

// RedisBackend adapts a go-redis client to the cache.Backend contract.
// Redis owns TTL enforcement; expired keys simply read as absent.
type RedisBackend struct {
	client    *redis.Client
	keyPrefix string
	opTimeout time.Duration
}

// NewRedisBackend validates cfg and builds the L2 backend. The connection is
// established lazily; a Redis that is down at startup degrades to a tier that
// always misses rather than failing construction.
func NewRedisBackend(cfg L2Config) (*RedisBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisBackend{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		opTimeout: cfg.OpTimeout,
	}, nil
}

// Ping verifies connectivity, used by warm-up and health checks.
func (b *RedisBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()
	return b.client.Ping(ctx).Err()
}

// Get returns the entry for key, or absent when the key is missing, expired,
// or the round-trip failed.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	payload, err := b.client.Get(ctx, b.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, &cache.UnavailableError{Tier: cache.TierL2, Op: "get", Err: err}
	}
	return payload, true, nil
}

// Set stores value under key with the given TTL.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	if err := b.client.Set(ctx, b.keyPrefix+key, value, ttl).Err(); err != nil {
		return &cache.UnavailableError{Tier: cache.TierL2, Op: "set", Err: err}
	}
	return nil
}

// Delete evicts key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	if err := b.client.Del(ctx, b.keyPrefix+key).Err(); err != nil {
		return &cache.UnavailableError{Tier: cache.TierL2, Op: "delete", Err: err}
	}
	return nil
}

// Close releases the underlying connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

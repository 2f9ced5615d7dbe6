package cache

import (
	"context"
	"time"
)

// Tier identifies which cache layer served a read.
type Tier string

const (
	// TierL1 is the process-local cache (fast, volatile).
	TierL1 Tier = "l1"
	// TierL2 is the shared cache (slower, survives restarts).
	TierL2 Tier = "l2"
)

// Backend is the minimal contract both cache tiers satisfy. Values are opaque
// bytes; the Manager owns serialization. Get on an absent or expired key must
// return (nil, false, nil), never an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UnavailableError wraps a backend failure (network error, timeout). The
// Manager absorbs it and treats the access as a miss; it never reaches callers.
type UnavailableError struct {
	Tier Tier
	Op   string
	Err  error
}

func (e *UnavailableError) Error() string {
	return "cache " + string(e.Tier) + " unavailable during " + e.Op + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

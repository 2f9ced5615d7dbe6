package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// Manager orchestrates the two cache tiers with read-through and backfill
// semantics. Reads probe L1 first, then L2; an L2 hit repopulates L1 so the
// next read for the same key is served locally. Writes go to both tiers
// synchronously. Backend failures are absorbed and counted as misses; callers
// only ever observe present or absent.
type Manager struct {
	l1      Backend
	l2      Backend
	stats   *Stats
	logger  *zap.Logger
	l1TTL   time.Duration
	l2TTL   time.Duration
	enabled bool
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for absorbed backend failures.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithDefaultTTLs overrides the tier TTLs applied when Set is called with a
// zero TTL. The L1 TTL also bounds backfilled entries.
func WithDefaultTTLs(l1TTL, l2TTL time.Duration) ManagerOption {
	return func(m *Manager) {
		if l1TTL > 0 {
			m.l1TTL = l1TTL
		}
		if l2TTL > 0 {
			m.l2TTL = l2TTL
		}
	}
}

// Disabled constructs the manager in bypass mode: Get always reports absent
// without touching the tiers or the counters, Set and Delete are no-ops.
func Disabled() ManagerOption {
	return func(m *Manager) { m.enabled = false }
}

// NewManager builds a Manager over the two tier backends. l2 may be nil for
// single-tier deployments; the L2 counters then stay at zero.
func NewManager(l1, l2 Backend, opts ...ManagerOption) *Manager {
	m := &Manager{
		l1:      l1,
		l2:      l2,
		stats:   &Stats{},
		logger:  zap.NewNop(),
		l1TTL:   time.Minute,
		l2TTL:   30 * time.Minute,
		enabled: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled reports whether the manager is actually caching.
func (m *Manager) Enabled() bool { return m.enabled }

// Stats returns a snapshot of the tier counters.
func (m *Manager) Stats() StatsSnapshot { return m.stats.Snapshot() }

// Get looks key up in L1 then L2, decoding the stored payload into dest on a
// hit. The returned Tier names the layer that served the value. Backend
// errors are treated as misses; an undecodable payload is treated as a miss
// and evicted from its tier so the next miss repopulates it cleanly.
func (m *Manager) Get(ctx context.Context, key string, dest any) (Tier, bool) {
	if !m.enabled {
		return "", false
	}

	if payload, ok := m.tierGet(ctx, TierL1, m.l1, key); ok {
		m.stats.l1Hits.Add(1)
		if m.decode(key, payload, dest) {
			return TierL1, true
		}
		m.evict(ctx, TierL1, m.l1, key)
		return "", false
	}
	m.stats.l1Misses.Add(1)

	if m.l2 == nil {
		return "", false
	}
	payload, ok := m.tierGet(ctx, TierL2, m.l2, key)
	if !ok {
		m.stats.l2Misses.Add(1)
		return "", false
	}
	m.stats.l2Hits.Add(1)

	if !m.decode(key, payload, dest) {
		m.evict(ctx, TierL2, m.l2, key)
		return "", false
	}

	// Backfill L1 so the next read is served locally.
	if err := m.l1.Set(ctx, key, payload, m.l1TTL); err != nil {
		m.logger.Debug("l1 backfill failed", zap.String("key", key), zap.Error(err))
	}
	return TierL2, true
}

// Set encodes value once and writes it to both tiers. A zero ttl falls back
// to the configured L2 default; L1 always uses its own shorter bound. Backend
// write failures are logged and absorbed so a cache that cannot accept writes
// does not fail the read path that feeds it. Encoding failures are returned
// since they indicate a non-serializable payload.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !m.enabled {
		return nil
	}

	payload, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = m.l2TTL
	}

	if err := m.l1.Set(ctx, key, payload, m.l1TTL); err != nil {
		m.logger.Warn("l1 set failed", zap.String("key", key), zap.Error(err))
	}
	if m.l2 != nil {
		if err := m.l2.Set(ctx, key, payload, ttl); err != nil {
			m.logger.Warn("l2 set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// Delete evicts key from both tiers.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if !m.enabled {
		return nil
	}

	if err := m.l1.Delete(ctx, key); err != nil {
		m.logger.Warn("l1 delete failed", zap.String("key", key), zap.Error(err))
	}
	if m.l2 != nil {
		if err := m.l2.Delete(ctx, key); err != nil {
			m.logger.Warn("l2 delete failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (m *Manager) tierGet(ctx context.Context, tier Tier, backend Backend, key string) ([]byte, bool) {
	if backend == nil {
		return nil, false
	}
	payload, ok, err := backend.Get(ctx, key)
	if err != nil {
		m.logger.Debug("cache tier read failed, treating as miss",
			zap.String("tier", string(tier)),
			zap.String("key", key),
			zap.Error(err))
		return nil, false
	}
	return payload, ok
}

// evict drops an undecodable entry from its tier so the key does not keep
// re-serving a payload that can never decode.
func (m *Manager) evict(ctx context.Context, tier Tier, backend Backend, key string) {
	if err := backend.Delete(ctx, key); err != nil {
		m.logger.Debug("cache evict failed",
			zap.String("tier", string(tier)),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (m *Manager) decode(key string, payload []byte, dest any) bool {
	if err := msgpack.Unmarshal(payload, dest); err != nil {
		m.logger.Warn("cache payload undecodable, treating as miss",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

package repositorycache

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/varlab/genomecache/cache"
	"github.com/varlab/genomecache/genomics"
	"github.com/varlab/genomecache/perf"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ genomics.Repository[any] = (*CachedRepository[any])(nil)

// TTLConfig sets the shared-tier TTL per operation. Listing results churn
// faster than aggregate statistics, so they get separate bounds.
type TTLConfig struct {
	FindMany  time.Duration
	GetByID   time.Duration
	Count     time.Duration
	Aggregate time.Duration
}

// DefaultTTLConfig returns the production TTLs.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		FindMany:  5 * time.Minute,
		GetByID:   15 * time.Minute,
		Count:     5 * time.Minute,
		Aggregate: 30 * time.Minute,
	}
}

// CachedRepository decorates a base repository with tiered caching and query
// timing. Composition, not inheritance: it holds the base implementation and
// satisfies the same interface by wrapping each read.
//
// Reads check the cache manager first. A hit bypasses the base repository
// and records a synthetic zero-duration sample tagged as a cache hit so
// latency reports stay honest. A miss times the base call, records the
// sample, stores the result, and returns it. The cache being down never
// fails a read; calls fall through to the base repository uncached.
type CachedRepository[T any] struct {
	base       genomics.Repository[T]
	cache      *cache.Manager
	serializer cache.KeySerializer
	monitor    *perf.Monitor
	logger     *zap.Logger
	namespace  string
	ttl        TTLConfig
}

// Option customizes a CachedRepository.
type Option[T any] func(*CachedRepository[T])

// WithTTLConfig overrides the per-operation TTLs.
func WithTTLConfig[T any](ttl TTLConfig) Option[T] {
	return func(c *CachedRepository[T]) { c.ttl = ttl }
}

// WithLogger sets the logger for absorbed cache failures.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(c *CachedRepository[T]) { c.logger = logger }
}

// WithNamespace overrides the cache key namespace derived from T.
func WithNamespace[T any](ns string) Option[T] {
	return func(c *CachedRepository[T]) { c.namespace = ns }
}

// New wraps base with caching keyed under a namespace derived from T's type
// name. monitor may be nil when query monitoring is disabled.
func New[T any](base genomics.Repository[T], manager *cache.Manager, serializer cache.KeySerializer, monitor *perf.Monitor, opts ...Option[T]) *CachedRepository[T] {
	c := &CachedRepository[T]{
		base:       base,
		cache:      manager,
		serializer: serializer,
		monitor:    monitor,
		logger:     zap.NewNop(),
		namespace:  namespaceFor[T](),
		ttl:        DefaultTTLConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// namespaceFor derives a key namespace from T's type name, e.g.
// genomics.GeneRecord becomes "gene_record".
func namespaceFor[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return toSnake(name)
}

// FindManyWithFilter returns one page of records, cached per filter+page.
func (c *CachedRepository[T]) FindManyWithFilter(ctx context.Context, filter genomics.SearchFilter, page genomics.PageRequest) (genomics.Page[T], error) {
	key := c.key("FindManyWithFilter", filter, page)
	op := c.namespace + ".findManyWithFilter"

	var cached genomics.Page[T]
	if _, ok := c.cache.Get(ctx, key, &cached); ok {
		c.recordHit(op, key, len(cached.Records))
		return cached, nil
	}

	start := time.Now()
	result, err := c.base.FindManyWithFilter(ctx, filter, page)
	c.record(op, key, time.Since(start), len(result.Records))
	if err != nil {
		return result, err
	}

	c.store(ctx, key, result, c.ttl.FindMany)
	return result, nil
}

// GetByID returns one record, cached per ID.
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	key := c.key("GetByID", id)
	op := c.namespace + ".getById"

	var cached T
	if _, ok := c.cache.Get(ctx, key, &cached); ok {
		c.recordHit(op, key, 1)
		return cached, nil
	}

	start := time.Now()
	result, err := c.base.GetByID(ctx, id)
	c.record(op, key, time.Since(start), 1)
	if err != nil {
		return result, err
	}

	c.store(ctx, key, result, c.ttl.GetByID)
	return result, nil
}

// Count returns the matching record count, cached per filter.
func (c *CachedRepository[T]) Count(ctx context.Context, filter genomics.SearchFilter) (int, error) {
	key := c.key("Count", filter)
	op := c.namespace + ".count"

	var cached int
	if _, ok := c.cache.Get(ctx, key, &cached); ok {
		c.recordHit(op, key, cached)
		return cached, nil
	}

	start := time.Now()
	result, err := c.base.Count(ctx, filter)
	c.record(op, key, time.Since(start), result)
	if err != nil {
		return result, err
	}

	c.store(ctx, key, result, c.ttl.Count)
	return result, nil
}

// AggregateStatistics returns summary statistics, cached per filter.
func (c *CachedRepository[T]) AggregateStatistics(ctx context.Context, filter genomics.SearchFilter) (genomics.AggregateStats, error) {
	key := c.key("AggregateStatistics", filter)
	op := c.namespace + ".aggregateStatistics"

	var cached genomics.AggregateStats
	if _, ok := c.cache.Get(ctx, key, &cached); ok {
		c.recordHit(op, key, cached.TotalRecords)
		return cached, nil
	}

	start := time.Now()
	result, err := c.base.AggregateStatistics(ctx, filter)
	c.record(op, key, time.Since(start), result.TotalRecords)
	if err != nil {
		return result, err
	}

	c.store(ctx, key, result, c.ttl.Aggregate)
	return result, nil
}

// Invalidate evicts the cache entry for an operation and its parameters.
// Write paths call this; the decorator never sees writes itself.
func (c *CachedRepository[T]) Invalidate(ctx context.Context, operation string, args ...any) error {
	return c.cache.Delete(ctx, c.key(operation, args...))
}

func (c *CachedRepository[T]) key(operation string, args ...any) string {
	return c.namespace + cache.KeySeparator + c.serializer.SerializeKey(operation, args...)
}

func (c *CachedRepository[T]) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("cache store failed",
			zap.String("key", key),
			zap.String("request_id", RequestIDFrom(ctx)),
			zap.Error(err))
	}
}

// record captures a completed base-repository call.
func (c *CachedRepository[T]) record(op, key string, duration time.Duration, rowCount int) {
	if c.monitor == nil {
		return
	}
	c.monitor.Record(perf.QueryMetric{
		Operation: op,
		Query:     key,
		Duration:  duration,
		RowCount:  rowCount,
		Source:    perf.SourceRepository,
	})
}

// recordHit captures a synthetic zero-duration sample for a cache hit so hit
// ratios are visible without skewing latency aggregates.
func (c *CachedRepository[T]) recordHit(op, key string, rowCount int) {
	if c.monitor == nil {
		return
	}
	c.monitor.Record(perf.QueryMetric{
		Operation: op,
		Query:     key,
		RowCount:  rowCount,
		Source:    perf.SourceRepository,
		CacheHit:  true,
	})
}

package optimize

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/varlab/genomecache/cache"
	"github.com/varlab/genomecache/container"
	"github.com/varlab/genomecache/genomics"
	"github.com/varlab/genomecache/internal/genestore"
	"github.com/varlab/genomecache/perf"
	"github.com/varlab/genomecache/repositorycache"
)

// Service names registered by Wire. Callers resolve repositories through
// these, never through concrete store types, so the active level stays
// invisible to downstream code.
const (
	ServiceGeneRepository    = "gene.repository"
	ServiceVariantRepository = "variant.repository"
)

// Manager wires the repository variants for the configured level into a
// container and exposes warm-up and reporting on top of the shared monitor
// and cache.
type Manager struct {
	level      Level
	db         *bun.DB
	cache      *cache.Manager
	monitor    *perf.Monitor
	serializer cache.KeySerializer
	logger     *zap.Logger
	container  *container.Container
	exporter   *perf.Exporter

	version     string
	environment string
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for warm-up and wiring messages.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithKeySerializer overrides the serializer handed to cached repositories.
func WithKeySerializer(s cache.KeySerializer) ManagerOption {
	return func(m *Manager) {
		if s != nil {
			m.serializer = s
		}
	}
}

// WithBuildInfo stamps exported reports with a version and environment.
func WithBuildInfo(version, environment string) ManagerOption {
	return func(m *Manager) {
		m.version = version
		m.environment = environment
	}
}

// New builds a manager for level. The cache manager may be nil for levels
// that never touch it; LevelFull requires one.
func New(level Level, db *bun.DB, cacheManager *cache.Manager, monitor *perf.Monitor, opts ...ManagerOption) *Manager {
	m := &Manager{
		level:      level,
		db:         db,
		cache:      cacheManager,
		monitor:    monitor,
		serializer: cache.NewDefaultKeySerializer(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.exporter = perf.NewExporter(monitor, m.cacheStats, m.version, m.environment)
	return m
}

// Level returns the level this manager wires.
func (m *Manager) Level() Level { return m.level }

// Wire registers the gene and variant repositories on c as singletons,
// choosing the variant for the manager's level. It returns a ConfigError
// when the level demands infrastructure the manager was built without.
func (m *Manager) Wire(c *container.Container) error {
	switch m.level {
	case LevelBasic:
		c.Register(ServiceGeneRepository, func(ctx context.Context, c *container.Container) (any, error) {
			return genestore.NewBasicGeneStore(m.db), nil
		}, container.Singleton())
		c.Register(ServiceVariantRepository, func(ctx context.Context, c *container.Container) (any, error) {
			return genestore.NewBasicVariantStore(m.db), nil
		}, container.Singleton())

	case LevelOptimized:
		c.Register(ServiceGeneRepository, func(ctx context.Context, c *container.Container) (any, error) {
			return repositorycache.NewInstrumented[genomics.GeneRecord](genestore.NewOptimizedGeneStore(m.db), m.monitor), nil
		}, container.Singleton())
		c.Register(ServiceVariantRepository, func(ctx context.Context, c *container.Container) (any, error) {
			return repositorycache.NewInstrumented[genomics.VariantRecord](genestore.NewOptimizedVariantStore(m.db), m.monitor), nil
		}, container.Singleton())

	case LevelFull:
		if m.cache == nil {
			return &WiringError{Level: m.level, Message: "full level requires a cache manager"}
		}
		c.Register(ServiceGeneRepository, func(ctx context.Context, c *container.Container) (any, error) {
			return repositorycache.New[genomics.GeneRecord](
				genestore.NewOptimizedGeneStore(m.db), m.cache, m.serializer, m.monitor,
				repositorycache.WithLogger[genomics.GeneRecord](m.logger),
			), nil
		}, container.Singleton())
		c.Register(ServiceVariantRepository, func(ctx context.Context, c *container.Container) (any, error) {
			return repositorycache.New[genomics.VariantRecord](
				genestore.NewOptimizedVariantStore(m.db), m.cache, m.serializer, m.monitor,
				repositorycache.WithLogger[genomics.VariantRecord](m.logger),
			), nil
		}, container.Singleton())

	default:
		return &WiringError{Level: m.level, Message: "unhandled level"}
	}

	m.container = c
	m.logger.Info("repositories wired", zap.String("level", m.level.String()))
	return nil
}

// WiringError reports a Wire call that cannot be satisfied.
type WiringError struct {
	Level   Level
	Message string
}

func (e *WiringError) Error() string {
	return "wire level " + e.Level.String() + ": " + e.Message
}

// WarmupResult summarizes a WarmupCaches run.
type WarmupResult struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

type warmupQuery struct {
	name string
	run  func(ctx context.Context) error
}

// WarmupCaches issues a fixed set of representative reads through the wired
// repositories so the first real requests land on warm cache entries. Each
// query is isolated: a failure is counted and logged, never propagated, and
// the remaining queries still run. Wire must have been called first.
func (m *Manager) WarmupCaches(ctx context.Context) WarmupResult {
	start := time.Now()
	var res WarmupResult

	if m.container == nil {
		m.logger.Warn("warmup skipped, repositories not wired")
		return res
	}

	genes, err := container.Resolve[genomics.Repository[genomics.GeneRecord]](ctx, m.container, ServiceGeneRepository)
	if err != nil {
		m.logger.Warn("warmup skipped, gene repository unavailable", zap.Error(err))
		return res
	}
	variants, err := container.Resolve[genomics.Repository[genomics.VariantRecord]](ctx, m.container, ServiceVariantRepository)
	if err != nil {
		m.logger.Warn("warmup skipped, variant repository unavailable", zap.Error(err))
		return res
	}

	firstPage := genomics.PageRequest{Limit: 25}
	queries := []warmupQuery{
		{"genes.firstPage", func(ctx context.Context) error {
			_, err := genes.FindManyWithFilter(ctx, genomics.SearchFilter{}, firstPage)
			return err
		}},
		{"genes.chromosome1", func(ctx context.Context) error {
			_, err := genes.FindManyWithFilter(ctx, genomics.SearchFilter{Chromosome: "1"}, firstPage)
			return err
		}},
		{"genes.statistics", func(ctx context.Context) error {
			_, err := genes.AggregateStatistics(ctx, genomics.SearchFilter{})
			return err
		}},
		{"variants.firstPage", func(ctx context.Context) error {
			_, err := variants.FindManyWithFilter(ctx, genomics.SearchFilter{}, firstPage)
			return err
		}},
		{"variants.pathogenic", func(ctx context.Context) error {
			_, err := variants.FindManyWithFilter(ctx, genomics.SearchFilter{Significance: "pathogenic"}, firstPage)
			return err
		}},
	}

	for _, q := range queries {
		res.Attempted++
		if err := q.run(ctx); err != nil {
			res.Failed++
			m.logger.Warn("warmup query failed", zap.String("query", q.name), zap.Error(err))
			continue
		}
		res.Succeeded++
	}

	res.Duration = time.Since(start)
	m.logger.Info("cache warmup complete",
		zap.Int("attempted", res.Attempted),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", res.Duration))
	return res
}

// CombinedReport bundles query performance, alerting, and cache counters
// into one document for diagnostics endpoints.
type CombinedReport struct {
	Level           string                 `json:"level"`
	Performance     perf.PerformanceReport `json:"performance"`
	SlowQueries     []perf.SlowQueryAlert  `json:"slowQueries"`
	Recommendations []perf.Recommendation  `json:"recommendations"`
	CacheStats      cache.StatsSnapshot    `json:"cacheStats"`
}

// PerformanceReport assembles the combined report over the given window.
func (m *Manager) PerformanceReport(window time.Duration) CombinedReport {
	return CombinedReport{
		Level:           m.level.String(),
		Performance:     m.monitor.PerformanceReport(window),
		SlowQueries:     m.monitor.SlowQueries(),
		Recommendations: m.monitor.Recommendations(),
		CacheStats:      m.cacheStats(),
	}
}

// Exporter returns the metrics exporter bound to this manager's monitor and
// cache, for Prometheus registration or text dumps.
func (m *Manager) Exporter() *perf.Exporter { return m.exporter }

func (m *Manager) cacheStats() cache.StatsSnapshot {
	if m.cache == nil {
		return cache.StatsSnapshot{}
	}
	return m.cache.Stats()
}

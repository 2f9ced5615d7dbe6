package optimize

import (
	"go.uber.org/zap"

	"github.com/varlab/genomecache/cache"
	"github.com/varlab/genomecache/config"
	"github.com/varlab/genomecache/internal/cacheinfra"
	"github.com/varlab/genomecache/perf"
)

// BuildCacheManager assembles the tier backends from configuration: a local
// sturdyc tier and a shared Redis tier. With CacheEnabled false the manager
// is returned in bypass mode so callers need no nil checks. With an empty
// RedisAddr the shared tier is skipped and the deployment runs single-tier.
func BuildCacheManager(cfg config.Config, logger *zap.Logger) (*cache.Manager, error) {
	l1cfg := cacheinfra.DefaultL1Config()
	if cfg.L1Capacity != 0 {
		l1cfg.Capacity = cfg.L1Capacity
	}
	if cfg.L1TTL > 0 {
		l1cfg.TTL = cfg.L1TTL
	}
	l1, err := cacheinfra.NewSturdycBackend(l1cfg)
	if err != nil {
		return nil, err
	}

	var l2 cache.Backend
	if cfg.RedisAddr != "" {
		l2cfg := cacheinfra.DefaultL2Config()
		l2cfg.Addr = cfg.RedisAddr
		l2cfg.Password = cfg.RedisPassword
		l2cfg.DB = cfg.RedisDB
		redis, err := cacheinfra.NewRedisBackend(l2cfg)
		if err != nil {
			return nil, err
		}
		l2 = redis
	}

	opts := []cache.ManagerOption{
		cache.WithLogger(logger),
		cache.WithDefaultTTLs(cfg.L1TTL, cfg.L2TTL),
	}
	if !cfg.CacheEnabled {
		opts = append(opts, cache.Disabled())
	}
	return cache.NewManager(l1, l2, opts...), nil
}

// BuildMonitor assembles the query monitor from configuration. With
// QueryMonitoring false the monitor still records samples on demand but its
// periodic cleanup loop is never started, so callers need no nil checks
// either way. Callers that get a running monitor own calling Stop.
func BuildMonitor(cfg config.Config, logger *zap.Logger) *perf.Monitor {
	monitor := perf.NewMonitor(
		perf.Config{SlowThreshold: cfg.SlowQueryThreshold},
		perf.WithMonitorLogger(logger),
	)
	if cfg.QueryMonitoring {
		monitor.Start()
	}
	return monitor
}

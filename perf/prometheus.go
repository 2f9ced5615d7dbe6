package perf

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/varlab/genomecache/cache"
)

// RegisterCollectors exposes the cache counters and the rolling query totals
// on a Prometheus registry for pull-based scraping. The window bounds the
// query aggregates, matching the JSON export.
func RegisterCollectors(reg prometheus.Registerer, e *Exporter) error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "genomecache",
			Name:      "cache_l1_hits_total",
			Help:      "Process-local cache tier hits.",
		}, counterFromStats(e, func(s cache.StatsSnapshot) int64 { return s.L1Hits })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "genomecache",
			Name:      "cache_l1_misses_total",
			Help:      "Process-local cache tier misses.",
		}, counterFromStats(e, func(s cache.StatsSnapshot) int64 { return s.L1Misses })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "genomecache",
			Name:      "cache_l2_hits_total",
			Help:      "Shared cache tier hits.",
		}, counterFromStats(e, func(s cache.StatsSnapshot) int64 { return s.L2Hits })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "genomecache",
			Name:      "cache_l2_misses_total",
			Help:      "Shared cache tier misses.",
		}, counterFromStats(e, func(s cache.StatsSnapshot) int64 { return s.L2Misses })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "genomecache",
			Name:      "monitor_uptime_seconds",
			Help:      "Seconds since the query monitor started.",
		}, func() float64 { return e.monitor.Uptime().Seconds() }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func counterFromStats(e *Exporter, pick func(cache.StatsSnapshot) int64) func() float64 {
	return func() float64 {
		if e.cacheStats == nil {
			return 0
		}
		return float64(pick(e.cacheStats()))
	}
}

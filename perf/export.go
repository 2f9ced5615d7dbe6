package perf

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"time"

	"github.com/varlab/genomecache/cache"
)

// SystemInfo describes the reporting process.
type SystemInfo struct {
	UptimeSeconds float64 `json:"uptime"`
	MemoryBytes   uint64  `json:"memory"`
	Version       string  `json:"version"`
	Environment   string  `json:"environment"`
}

// Export is the JSON document handed to operational tooling.
type Export struct {
	Timestamp     time.Time          `json:"timestamp"`
	WindowMinutes int                `json:"windowMinutes"`
	Category      string             `json:"category"`
	Metrics       map[string]float64 `json:"metrics"`
	System        SystemInfo         `json:"system"`
}

// Exporter assembles Export documents from a monitor and the cache counters.
type Exporter struct {
	monitor     *Monitor
	cacheStats  func() cache.StatsSnapshot
	version     string
	environment string
}

// NewExporter wires an exporter. cacheStats may be nil when no cache manager
// is deployed; the cache section is then omitted.
func NewExporter(monitor *Monitor, cacheStats func() cache.StatsSnapshot, version, environment string) *Exporter {
	return &Exporter{
		monitor:     monitor,
		cacheStats:  cacheStats,
		version:     version,
		environment: environment,
	}
}

// Report builds the export document for the given window.
func (e *Exporter) Report(window time.Duration) Export {
	perf := e.monitor.PerformanceReport(window)

	metrics := map[string]float64{
		"query_total":           float64(perf.TotalQueries),
		"query_cache_hits":      float64(perf.CacheHits),
		"query_avg_duration_ms": perf.AverageDuration,
		"query_slow_total":      float64(perf.SlowQueries),
		"query_slow_percent":    perf.SlowQueryPercentage,
	}
	if e.cacheStats != nil {
		stats := e.cacheStats()
		metrics["cache_l1_hits"] = float64(stats.L1Hits)
		metrics["cache_l1_misses"] = float64(stats.L1Misses)
		metrics["cache_l2_hits"] = float64(stats.L2Hits)
		metrics["cache_l2_misses"] = float64(stats.L2Misses)
		metrics["cache_hit_rate_percent"] = stats.HitRate()
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Export{
		Timestamp:     time.Now(),
		WindowMinutes: int(window / time.Minute),
		Category:      "data-access",
		Metrics:       metrics,
		System: SystemInfo{
			UptimeSeconds: e.monitor.Uptime().Seconds(),
			MemoryBytes:   mem.Alloc,
			Version:       e.version,
			Environment:   e.environment,
		},
	}
}

// WriteText writes the metrics in the line-oriented exposition format used by
// pull-based scrapers: one "metric_name value" pair per line, sorted by name.
func (e *Exporter) WriteText(w io.Writer, window time.Duration) error {
	report := e.Report(window)

	names := make([]string, 0, len(report.Metrics))
	for name := range report.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s %g\n", name, report.Metrics[name]); err != nil {
			return err
		}
	}
	return nil
}

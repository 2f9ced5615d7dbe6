package perf

import (
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config tunes the monitor. Zero values fall back to defaults.
type Config struct {
	// SlowThreshold is the duration above which a sample raises or updates a
	// SlowQueryAlert. Default 1s, overridable via SLOW_QUERY_THRESHOLD.
	SlowThreshold time.Duration

	// VerySlowThreshold additionally emits a warning log. Default 5s.
	VerySlowThreshold time.Duration

	// Retention caps the ring buffer. Oldest samples drop first. Default 10000.
	Retention int

	// SampleMaxAge is how long samples stay relevant. Default 1h.
	SampleMaxAge time.Duration

	// AlertMaxIdle removes alerts whose last occurrence is older than this.
	// Default 24h.
	AlertMaxIdle time.Duration

	// CleanupInterval is the periodic prune cadence. Default 5m.
	CleanupInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = time.Second
	}
	if c.VerySlowThreshold <= 0 {
		c.VerySlowThreshold = 5 * time.Second
	}
	if c.Retention <= 0 {
		c.Retention = 10000
	}
	if c.SampleMaxAge <= 0 {
		c.SampleMaxAge = time.Hour
	}
	if c.AlertMaxIdle <= 0 {
		c.AlertMaxIdle = 24 * time.Hour
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	return c
}

// Monitor records query samples into a bounded ring buffer, maintains
// slow-query alerts, and serves rolling-window reports. Record never returns
// an error and holds the lock only for the append itself, so request paths
// are never blocked by reporting or cleanup.
type Monitor struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	samples []QueryMetric // ring storage, len == cfg.Retention
	next    int           // write cursor
	count   int           // filled entries, <= cfg.Retention
	alerts  map[string]*SlowQueryAlert

	startedAt time.Time
	running   atomic.Bool
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithMonitorLogger sets the logger for slow-query warnings.
func WithMonitorLogger(logger *zap.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = logger }
}

// withClock overrides the time source, used by tests.
func withClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor builds a Monitor. Call Start to run the periodic cleanup.
func NewMonitor(cfg Config, opts ...MonitorOption) *Monitor {
	cfg = cfg.withDefaults()
	m := &Monitor{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
		alerts: make(map[string]*SlowQueryAlert),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.samples = make([]QueryMetric, cfg.Retention)
	m.startedAt = m.now()
	return m
}

var digitsPattern = regexp.MustCompile(`\d+`)

// normalizeOperation collapses numeric IDs so gene.findById(42) and
// gene.findById(7) share one alert key.
func normalizeOperation(op string) string {
	return digitsPattern.ReplaceAllString(op, "N")
}

// Record appends a sample. When the ring is full the oldest sample is
// overwritten. Slow samples update the alert map in place; very slow samples
// additionally log a warning.
func (m *Monitor) Record(metric QueryMetric) {
	if metric.Timestamp.IsZero() {
		metric.Timestamp = m.now()
	}

	m.mu.Lock()
	m.samples[m.next] = metric
	m.next = (m.next + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}

	if !metric.CacheHit && metric.Duration > m.cfg.SlowThreshold {
		key := normalizeOperation(metric.Operation)
		alert, ok := m.alerts[key]
		if !ok {
			alert = &SlowQueryAlert{Query: key, Threshold: m.cfg.SlowThreshold}
			m.alerts[key] = alert
		}
		alert.Frequency++
		alert.LastOccurrence = metric.Timestamp
		if metric.Duration > alert.Duration {
			alert.Duration = metric.Duration
		}
	}
	m.mu.Unlock()

	if !metric.CacheHit && metric.Duration > m.cfg.VerySlowThreshold {
		m.logger.Warn("very slow query",
			zap.String("operation", metric.Operation),
			zap.Duration("duration", metric.Duration),
			zap.String("source", string(metric.Source)),
			zap.Int("row_count", metric.RowCount))
	}
}

// snapshot copies the ring contents oldest-first. Callers must hold m.mu.
func (m *Monitor) snapshot() []QueryMetric {
	out := make([]QueryMetric, 0, m.count)
	start := m.next - m.count
	if start < 0 {
		start += len(m.samples)
	}
	for i := 0; i < m.count; i++ {
		out = append(out, m.samples[(start+i)%len(m.samples)])
	}
	return out
}

// Start launches the periodic cleanup. It returns immediately; the loop runs
// until Stop. The timer runs outside the lock so concurrent Record calls are
// never blocked while the loop is waiting.
func (m *Monitor) Start() {
	if !m.running.CompareAndSwap(false, true) {
		return
	}
	go func() {
		ticker := time.NewTicker(m.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Prune()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the cleanup loop. Safe to call more than once, and on a
// monitor that was never started.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.running.Store(false)
}

// Running reports whether the periodic cleanup loop is active.
func (m *Monitor) Running() bool { return m.running.Load() }

// Prune drops samples older than SampleMaxAge and alerts idle longer than
// AlertMaxIdle. Also invoked by the periodic loop.
func (m *Monitor) Prune() {
	now := m.now()
	sampleCutoff := now.Add(-m.cfg.SampleMaxAge)
	alertCutoff := now.Add(-m.cfg.AlertMaxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]QueryMetric, 0, m.count)
	for _, s := range m.snapshot() {
		if s.Timestamp.After(sampleCutoff) {
			kept = append(kept, s)
		}
	}
	for i := range m.samples {
		m.samples[i] = QueryMetric{}
	}
	copy(m.samples, kept)
	m.count = len(kept)
	m.next = m.count % len(m.samples)

	for key, alert := range m.alerts {
		if alert.LastOccurrence.Before(alertCutoff) {
			delete(m.alerts, key)
		}
	}
}

// Uptime reports how long the monitor has been running.
func (m *Monitor) Uptime() time.Duration {
	return m.now().Sub(m.startedAt)
}

package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func sample(op string, d time.Duration) QueryMetric {
	return QueryMetric{
		Operation: op,
		Duration:  d,
		RowCount:  1,
		Source:    SourceRepository,
	}
}

func TestNormalizeOperation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gene.findById(42)", "gene.findById(N)"},
		{"gene.findById(7)", "gene.findById(N)"},
		{"variant.page(100,25)", "variant.page(N,N)"},
		{"gene.findAll", "gene.findAll"},
	}
	for _, tt := range tests {
		if got := normalizeOperation(tt.in); got != tt.want {
			t.Errorf("normalizeOperation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonitor_SlowQueryGrouping(t *testing.T) {
	clock := newFakeClock()
	m := NewMonitor(Config{SlowThreshold: 100 * time.Millisecond}, withClock(clock.Now))

	m.Record(sample("gene.findById(1)", 150*time.Millisecond))
	clock.Advance(time.Second)
	m.Record(sample("gene.findById(2)", 300*time.Millisecond))
	m.Record(sample("gene.findById(3)", 50*time.Millisecond)) // fast, no alert

	alerts := m.SlowQueries()
	require.Len(t, alerts, 1, "id variants must collapse into one alert")

	alert := alerts[0]
	assert.Equal(t, "gene.findById(N)", alert.Query)
	assert.Equal(t, 2, alert.Frequency)
	assert.Equal(t, 300*time.Millisecond, alert.Duration, "alert keeps the worst duration")
	assert.Equal(t, clock.Now(), alert.LastOccurrence)
}

func TestMonitor_SlowQueriesSortedByFrequency(t *testing.T) {
	m := NewMonitor(Config{SlowThreshold: 100 * time.Millisecond})

	for i := 0; i < 3; i++ {
		m.Record(sample("variant.search", 200*time.Millisecond))
	}
	m.Record(sample("gene.aggregate", 2*time.Second))

	alerts := m.SlowQueries()
	require.Len(t, alerts, 2)
	assert.Equal(t, "variant.search", alerts[0].Query)
	assert.Equal(t, "gene.aggregate", alerts[1].Query)
}

func TestMonitor_CacheHitsNeverAlert(t *testing.T) {
	m := NewMonitor(Config{SlowThreshold: 100 * time.Millisecond})

	hit := sample("gene.findAll", 500*time.Millisecond)
	hit.CacheHit = true
	m.Record(hit)

	assert.Empty(t, m.SlowQueries())
}

func TestMonitor_VerySlowQueryLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := NewMonitor(
		Config{SlowThreshold: 100 * time.Millisecond, VerySlowThreshold: time.Second},
		WithMonitorLogger(zap.New(core)),
	)

	m.Record(sample("gene.aggregate", 2*time.Second))
	m.Record(sample("gene.findAll", 500*time.Millisecond)) // slow but not very slow

	entries := logs.FilterMessage("very slow query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gene.aggregate", entries[0].ContextMap()["operation"])
}

func TestMonitor_RingBufferOverwritesOldest(t *testing.T) {
	clock := newFakeClock()
	m := NewMonitor(Config{Retention: 5}, withClock(clock.Now))

	for i := 0; i < 8; i++ {
		clock.Advance(time.Second)
		m.Record(sample("gene.findAll", 10*time.Millisecond))
	}

	report := m.PerformanceReport(time.Hour)
	assert.Equal(t, 5, report.TotalQueries, "retention caps the sample count")
}

func TestMonitor_PruneDropsOldSamplesAndIdleAlerts(t *testing.T) {
	clock := newFakeClock()
	m := NewMonitor(
		Config{
			SlowThreshold: 100 * time.Millisecond,
			SampleMaxAge:  time.Hour,
			AlertMaxIdle:  2 * time.Hour,
		},
		withClock(clock.Now),
	)

	m.Record(sample("gene.old", 200*time.Millisecond))
	clock.Advance(90 * time.Minute)
	m.Record(sample("gene.recent", 200*time.Millisecond))

	m.Prune()

	report := m.PerformanceReport(24 * time.Hour)
	assert.Equal(t, 1, report.TotalQueries, "samples past max age must drop")

	// Both alerts survive: gene.old last fired 90m ago, under the 2h idle cap.
	require.Len(t, m.SlowQueries(), 2)

	clock.Advance(time.Hour)
	m.Prune()

	alerts := m.SlowQueries()
	require.Len(t, alerts, 1)
	assert.Equal(t, "gene.recent", alerts[0].Query)
}

func TestMonitor_StartStop(t *testing.T) {
	m := NewMonitor(Config{CleanupInterval: 10 * time.Millisecond})
	assert.False(t, m.Running(), "cleanup loop must not run before Start")

	m.Start()
	m.Start() // second call is a no-op
	assert.True(t, m.Running())

	m.Record(sample("gene.findAll", time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	m.Stop()
	m.Stop() // idempotent
	assert.False(t, m.Running())
}

func TestMonitor_Uptime(t *testing.T) {
	clock := newFakeClock()
	m := NewMonitor(Config{}, withClock(clock.Now))

	clock.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, m.Uptime())
}

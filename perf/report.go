package perf

import (
	"sort"
	"time"
)

// Trend classifies how latency moved across a report window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDegrading Trend = "degrading"
)

// OperationStat summarizes one operation inside a report window.
type OperationStat struct {
	Operation       string  `json:"operation"`
	Count           int     `json:"count"`
	AverageDuration float64 `json:"averageDurationMs"`
}

// PerformanceReport is a rolling-window latency summary. Cache-hit samples
// are counted in CacheHits but excluded from every latency figure.
type PerformanceReport struct {
	TotalQueries        int             `json:"totalQueries"`
	CacheHits           int             `json:"cacheHits"`
	AverageDuration     float64         `json:"averageDurationMs"`
	SlowQueries         int             `json:"slowQueries"`
	SlowQueryPercentage float64         `json:"slowQueryPercentage"`
	TopSlowOperations   []OperationStat `json:"topSlowOperations"`
	PerformanceTrend    Trend           `json:"performanceTrend"`
}

// minTrendSamples is the sample floor below which the trend is always stable.
const minTrendSamples = 10

// Recommendation is a derived optimization hint.
type Recommendation struct {
	Query       string        `json:"query"`
	Priority    string        `json:"priority"` // "high" or "medium"
	Suggestion  string        `json:"suggestion"`
	Frequency   int           `json:"frequency"`
	MaxDuration time.Duration `json:"maxDuration"`
}

// PerformanceReport filters the ring buffer to samples within the window and
// aggregates them.
func (m *Monitor) PerformanceReport(window time.Duration) PerformanceReport {
	cutoff := m.now().Add(-window)

	m.mu.Lock()
	all := m.snapshot()
	slowThreshold := m.cfg.SlowThreshold
	m.mu.Unlock()

	var windowed []QueryMetric
	report := PerformanceReport{PerformanceTrend: TrendStable}

	for _, s := range all {
		if !s.Timestamp.After(cutoff) {
			continue
		}
		if s.CacheHit {
			report.CacheHits++
			continue
		}
		windowed = append(windowed, s)
	}

	report.TotalQueries = len(windowed)
	if len(windowed) == 0 {
		return report
	}

	var totalDur time.Duration
	perOp := make(map[string][]time.Duration)
	for _, s := range windowed {
		totalDur += s.Duration
		if s.Duration > slowThreshold {
			report.SlowQueries++
		}
		perOp[s.Operation] = append(perOp[s.Operation], s.Duration)
	}

	report.AverageDuration = durationMs(totalDur) / float64(len(windowed))
	report.SlowQueryPercentage = float64(report.SlowQueries) / float64(len(windowed)) * 100
	report.TopSlowOperations = topSlowOperations(perOp, 10)
	report.PerformanceTrend = computeTrend(windowed)

	return report
}

// SlowQueries returns the current alerts, most frequent first.
func (m *Monitor) SlowQueries() []SlowQueryAlert {
	m.mu.Lock()
	out := make([]SlowQueryAlert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		out = append(out, *alert)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Query < out[j].Query
	})
	return out
}

// Recommendations derives optimization hints from the slow-query alerts:
// frequent and very slow operations suggest a missing index, merely frequent
// ones suggest caching. High priority sorts first.
func (m *Monitor) Recommendations() []Recommendation {
	m.mu.Lock()
	verySlow := m.cfg.VerySlowThreshold
	alerts := make([]SlowQueryAlert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		alerts = append(alerts, *alert)
	}
	m.mu.Unlock()

	var out []Recommendation
	for _, alert := range alerts {
		switch {
		case alert.Frequency > 10 && alert.Duration > verySlow:
			out = append(out, Recommendation{
				Query:       alert.Query,
				Priority:    "high",
				Suggestion:  "add index: operation is frequent and very slow",
				Frequency:   alert.Frequency,
				MaxDuration: alert.Duration,
			})
		case alert.Frequency > 5:
			out = append(out, Recommendation{
				Query:       alert.Query,
				Priority:    "medium",
				Suggestion:  "add caching: operation repeats often",
				Frequency:   alert.Frequency,
				MaxDuration: alert.Duration,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority == "high"
		}
		return out[i].Frequency > out[j].Frequency
	})
	return out
}

// computeTrend splits the windowed samples into chronological halves and
// compares average durations. Needs at least minTrendSamples to say anything
// other than stable.
func computeTrend(samples []QueryMetric) Trend {
	if len(samples) < minTrendSamples {
		return TrendStable
	}

	half := len(samples) / 2
	firstAvg := averageDuration(samples[:half])
	secondAvg := averageDuration(samples[half:])
	if firstAvg == 0 {
		return TrendStable
	}

	change := (secondAvg - firstAvg) / firstAvg
	switch {
	case change > 0.20:
		return TrendDegrading
	case change < -0.20:
		return TrendImproving
	default:
		return TrendStable
	}
}

func averageDuration(samples []QueryMetric) float64 {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range samples {
		total += s.Duration
	}
	return durationMs(total) / float64(len(samples))
}

func topSlowOperations(perOp map[string][]time.Duration, limit int) []OperationStat {
	stats := make([]OperationStat, 0, len(perOp))
	for op, durations := range perOp {
		var total time.Duration
		for _, d := range durations {
			total += d
		}
		stats = append(stats, OperationStat{
			Operation:       op,
			Count:           len(durations),
			AverageDuration: durationMs(total) / float64(len(durations)),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AverageDuration != stats[j].AverageDuration {
			return stats[i].AverageDuration > stats[j].AverageDuration
		}
		return stats[i].Operation < stats[j].Operation
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

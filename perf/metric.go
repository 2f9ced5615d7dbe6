package perf

import "time"

// Source names the layer that produced a metric.
type Source string

const (
	SourceRepository Source = "repository"
	SourceService    Source = "service"
	SourceAPI        Source = "api"
)

// QueryMetric is one completed operation sample. Samples are created on every
// call completion, success or failure.
type QueryMetric struct {
	// Operation is the logical name, e.g. "gene.findManyWithFilter".
	Operation string `json:"operation"`

	// Query carries the serialized parameters for diagnostics.
	Query string `json:"query"`

	Duration  time.Duration `json:"duration"`
	RowCount  int           `json:"rowCount,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Source    Source        `json:"source"`

	// CacheHit marks synthetic zero-duration samples recorded when a read is
	// served from cache. They are counted separately and excluded from
	// latency aggregates so they do not skew averages downward.
	CacheHit bool `json:"cacheHit,omitempty"`
}

// SlowQueryAlert aggregates slow occurrences of one normalized operation.
// Operations differing only in numeric IDs collapse into one alert.
type SlowQueryAlert struct {
	// Query is the normalized operation key, digits replaced by "N".
	Query string `json:"query"`

	// Duration is the worst duration seen so far.
	Duration time.Duration `json:"duration"`

	// Threshold is the slow cutoff that was in effect.
	Threshold time.Duration `json:"threshold"`

	// Frequency counts slow occurrences since the alert was created.
	Frequency int `json:"frequency"`

	LastOccurrence time.Time `json:"lastOccurrence"`
}

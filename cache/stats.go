package cache

import "sync/atomic"

// Stats tracks per-tier hit and miss counters. Counters only ever increase;
// they reset when the process restarts.
type Stats struct {
	l1Hits   atomic.Int64
	l1Misses atomic.Int64
	l2Hits   atomic.Int64
	l2Misses atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	L1Hits   int64 `json:"l1Hits"`
	L1Misses int64 `json:"l1Misses"`
	L2Hits   int64 `json:"l2Hits"`
	L2Misses int64 `json:"l2Misses"`
}

// HitRate returns the overall hit percentage, or 0 when nothing was accessed.
// Every lookup touches L1 first, so L1Hits+L1Misses is the total lookup count
// whether or not a shared tier is configured.
func (s StatsSnapshot) HitRate() float64 {
	hits := s.L1Hits + s.L2Hits
	total := s.L1Hits + s.L1Misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		L1Hits:   s.l1Hits.Load(),
		L1Misses: s.l1Misses.Load(),
		L2Hits:   s.l2Hits.Load(),
		L2Misses: s.l2Misses.Load(),
	}
}

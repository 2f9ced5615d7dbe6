// Package repositorycache provides the cached and instrumented repository
// decorators for the genomic browse domain.
//
// # Overview
//
// CachedRepository wraps any genomics.Repository implementation and
// intercepts its read operations with the two-tier cache manager, recording
// query timings against the performance monitor. InstrumentedRepository is
// the timing-only sibling used when caching is switched off but monitoring
// stays on. Both are plain composition over a held base value; there is no
// inheritance chain to fight.
//
// # Caching behavior
//
// Each read builds a cache key from a namespace derived from the record
// type, the operation name, and the canonicalized parameters. Equal filters
// always map to equal keys regardless of construction order.
//
//  1. Check the cache manager (L1, then L2 with backfill)
//  2. Hit: return the cached value and record a zero-duration sample
//     tagged as a cache hit
//  3. Miss: time the base repository call, record the sample, store the
//     result with the operation's TTL, return it
//
// A failing cache never fails a read: the decorator logs and falls through
// to the base repository uncached. Base repository errors propagate
// unchanged and are never stored.
//
// # Invalidation
//
// The decorator does not observe writes. Write paths call Invalidate with
// the operation and parameters whose cached entries they made stale.
package repositorycache

// Package cache implements the two-tier caching engine used by the data
// access layer: a process-local L1 tier in front of a shared L2 tier.
//
// # Overview
//
// The package exports three pieces:
//
//   - Backend: the uniform get/set/delete contract both tiers satisfy
//   - KeySerializer: builds stable cache keys from an operation name and
//     arguments
//   - Manager: orchestrates the tiers with read-through and L1 backfill
//     semantics and tracks per-tier hit/miss counters
//
// Concrete backends live in internal/cacheinfra: a sturdyc adapter for L1 and
// a Redis adapter for L2.
//
// # Read path
//
// Manager.Get probes L1 first and returns immediately on a hit. On an L1 miss
// it probes L2; an L2 hit backfills L1 before returning so subsequent reads
// for the same key stay local. Only when both tiers miss does the caller fall
// through to the source of truth.
//
// # Failure policy
//
// Tier failures never surface to callers. A backend error or timeout on Get
// counts as a miss, a failed write is logged and dropped. Callers observe
// either a value (possibly stale, bounded by TTL) or an absent entry, never
// a cache-specific error.
//
// # Key serialization
//
// Cache correctness depends on deterministic keys. The default serializer
// canonicalizes arguments with reflection: map keys are sorted, struct fields
// walk in declaration order, slices and pointers recurse. Two semantically
// equal filter values therefore always produce the same key regardless of
// map insertion order. Oversized keys are folded into an xxhash digest while
// keeping the operation prefix readable.
package cache

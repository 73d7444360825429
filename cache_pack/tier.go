// Package cache_pack is the cache tier shared by the faucet and the TPS aggregator.
//
// The tier is the system of record for nonce counters and memoized aggregates: nothing in this
// repository keeps cross-request state in process memory. Two implementations share the Tier
// contract:
//
//   - RedisTier: the production tier. SetIfAbsent is SET NX, Increment runs a Lua script that
//     increments only an existing key, so both are atomic with respect to each other across any
//     number of processes.
//   - MemoryTier: an in-process tier guarded by a mutex, for tests and single-instance setups.
//
// GetOrSet implements the cache-aside policy on top of any Tier.
package cache_pack

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Increment when the key does not exist (never created or expired).
var ErrMiss = errors.New("cache miss")

type Tier interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetIfAbsent stores value only when key does not exist. It reports whether this call won.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Increment atomically adds one to an existing integer key and returns the new value.
	// It returns ErrMiss when the key is absent and never creates it.
	Increment(ctx context.Context, key string) (int64, error)

	// GetMany returns the present keys only.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)

	// Set stores value. A zero ttl means no expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Add atomically adds delta to key, creating it at zero when absent, and refreshes ttl when
	// ttl > 0. Used by the indexer to maintain counters.
	Add(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)

	Close() error
}

var (
	_ Tier = (*RedisTier)(nil)
	_ Tier = (*MemoryTier)(nil)
)

// Package cache is the keyed short-TTL store behind replay suppression and
// attempt rate limiting.
//
// Only get and set-with-TTL are offered. There is no compare-and-swap, so
// read-modify-write sequences built on top are best effort.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache stores opaque values under string keys with a TTL.
type Cache interface {
	// Get returns the value for key or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A non-positive ttl is rejected.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ErrInvalidTTL is returned by Set for a non-positive ttl.
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// ErrUnavailable wraps failures to reach the backing store.
var ErrUnavailable = errors.New("cache: unavailable")

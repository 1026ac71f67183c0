package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. Expiry follows the injected clock, which lets
// tests step across TTLs. It suits tests and single-node development only.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clocker
	entries map[string]memoryEntry
}

// NewMemory returns an empty Memory cache.
func NewMemory(c clock.Clocker) *Memory {
	return &Memory{clock: c, entries: make(map[string]memoryEntry)}
}

// Get returns the value for key or ErrMiss. Expired entries are evicted.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, ErrMiss
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value under key for ttl.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: v, expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Unlock()

	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

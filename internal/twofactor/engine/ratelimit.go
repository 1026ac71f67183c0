package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/cache"
	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
)

const attemptKeyPrefix = "2fa:attempts:"

// RateLimiter bounds attempts against one HOTP counter value of one seed
// generation with a sliding window of attempt timestamps. Reads and writes are separate cache calls, so
// racing attempts can slip slightly past the threshold.
type RateLimiter struct {
	cache     cache.Cache
	clock     clock.Clocker
	window    time.Duration
	threshold int
}

func NewRateLimiter(c cache.Cache, clk clock.Clocker, window time.Duration, threshold int) *RateLimiter {
	return &RateLimiter{cache: c, clock: clk, window: window, threshold: threshold}
}

func (l *RateLimiter) key(owner int64, generation string, counter uint64) string {
	return attemptKeyPrefix + strconv.FormatInt(owner, 10) + ":" + generation + ":" + strconv.FormatUint(counter, 10)
}

// Allow records one attempt in the (owner, generation, counter) bucket and reports whether
// it is within the threshold. Rejected attempts are recorded too, so a caller
// that keeps hammering stays locked out until the window drains.
func (l *RateLimiter) Allow(ctx context.Context, owner int64, generation string, counter uint64) (bool, error) {
	key := l.key(owner, generation, counter)
	now := l.clock.Now()

	attempts, err := l.load(ctx, key)
	if err != nil {
		return false, err
	}

	cutoff := now.Add(-l.window).UnixNano()
	recent := attempts[:0]
	for _, at := range attempts {
		if at > cutoff {
			recent = append(recent, at)
		}
	}
	recent = append(recent, now.UnixNano())

	allowed := len(recent) <= l.threshold

	// only the newest threshold+1 entries can change the decision
	if keep := l.threshold + 1; len(recent) > keep {
		recent = recent[len(recent)-keep:]
	}

	raw, err := json.Marshal(recent)
	if err != nil {
		return false, err
	}
	if err := l.cache.Set(ctx, key, raw, l.window); err != nil {
		return false, err
	}

	return allowed, nil
}

func (l *RateLimiter) load(ctx context.Context, key string) ([]int64, error) {
	raw, err := l.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var attempts []int64
	if err := json.Unmarshal(raw, &attempts); err != nil {
		slog.WarnContext(ctx, "discarding corrupt attempt bucket", "bucket", key, "error", err)
		return nil, nil
	}

	return attempts, nil
}

package engine

import (
	"context"
)

type hotpMatcher interface {
	MatchHOTP(seed []byte, code string, counter uint64) (bool, error)
}

// HotpResult is the outcome of one HOTP check. Counter is the value to
// persist; Delete means the sheet is used up and the record must go.
type HotpResult struct {
	Matched bool
	Counter uint64
	Delete  bool
}

// HotpChecker matches a code at exactly the stored counter. There is no
// look-ahead, so a holder who skips a printed code cannot use later ones.
type HotpChecker struct {
	codes      hotpMatcher
	limiter    *RateLimiter
	maxCounter uint64
}

func NewHotpChecker(codes hotpMatcher, limiter *RateLimiter, maxCounter uint64) *HotpChecker {
	return &HotpChecker{codes: codes, limiter: limiter, maxCounter: maxCounter}
}

// Check matches code at counter. generation identifies the seed so that a
// reseeded credential starts with empty attempt buckets.
func (c *HotpChecker) Check(ctx context.Context, owner int64, generation string, seed []byte, code string, counter uint64) (HotpResult, error) {
	miss := HotpResult{Counter: counter}

	allowed, err := c.limiter.Allow(ctx, owner, generation, counter)
	if err != nil {
		return miss, err
	}
	if !allowed {
		return miss, nil
	}

	ok, err := c.codes.MatchHOTP(seed, code, counter)
	if err != nil || !ok {
		return miss, err
	}

	next := counter + 1
	return HotpResult{
		Matched: true,
		Counter: next,
		Delete:  next >= c.maxCounter,
	}, nil
}

// Remaining returns how many codes are left before the counter hits the maximum.
func (c *HotpChecker) Remaining(counter uint64) uint64 {
	if counter >= c.maxCounter {
		return 0
	}
	return c.maxCounter - counter
}

// RemainingLow reports whether at most lowWaterMark codes are left.
func (c *HotpChecker) RemainingLow(counter, lowWaterMark uint64) bool {
	return c.Remaining(counter) <= lowWaterMark
}

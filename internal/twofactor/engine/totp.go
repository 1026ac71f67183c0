package engine

import (
	"context"
	"time"
)

type totpMatcher interface {
	MatchTOTP(seed []byte, code string, at time.Time) (bool, error)
}

// TotpChecker accepts a code valid anywhere in the drift window around now,
// at most once per replay TTL.
type TotpChecker struct {
	codes totpMatcher
	guard *ReplayGuard
}

func NewTotpChecker(codes totpMatcher, guard *ReplayGuard) *TotpChecker {
	return &TotpChecker{codes: codes, guard: guard}
}

func (c *TotpChecker) Check(ctx context.Context, owner int64, seed []byte, code string, now time.Time) (bool, error) {
	ok, err := c.codes.MatchTOTP(seed, code, now)
	if err != nil || !ok {
		return false, err
	}

	seen, err := c.guard.Seen(ctx, owner, code)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	if err := c.guard.Mark(ctx, owner, code); err != nil {
		return false, err
	}

	return true, nil
}

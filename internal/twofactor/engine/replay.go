package engine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/cache"
	"github.com/shandysiswandi/twofactor/internal/pkg/hash"
)

const replayKeyPrefix = "2fa:replay:"

// ReplayGuard remembers accepted TOTP codes per owner for a short TTL.
// Codes are stored as keyed digests, never in clear.
type ReplayGuard struct {
	cache cache.Cache
	hash  hash.Hash
	ttl   time.Duration
}

func NewReplayGuard(c cache.Cache, h hash.Hash, ttl time.Duration) *ReplayGuard {
	return &ReplayGuard{cache: c, hash: h, ttl: ttl}
}

func (g *ReplayGuard) key(owner int64, code string) (string, error) {
	digest, err := g.hash.Hash(code)
	if err != nil {
		return "", err
	}

	return replayKeyPrefix + strconv.FormatInt(owner, 10) + ":" + string(digest), nil
}

// Seen reports whether code was accepted for owner within the TTL.
func (g *ReplayGuard) Seen(ctx context.Context, owner int64, code string) (bool, error) {
	key, err := g.key(owner, code)
	if err != nil {
		return false, err
	}

	if _, err := g.cache.Get(ctx, key); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Mark records code as accepted for owner.
func (g *ReplayGuard) Mark(ctx context.Context, owner int64, code string) error {
	key, err := g.key(owner, code)
	if err != nil {
		return err
	}

	return g.cache.Set(ctx, key, []byte{1}, g.ttl)
}

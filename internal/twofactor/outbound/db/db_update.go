package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

// ReplaceTokenSeed overwrites kind, seed and counter of an existing row.
func (s *DB) ReplaceTokenSeed(ctx context.Context, rec entity.TokenRecord) (err error) {
	ctx, span := s.startSpan(ctx, "ReplaceTokenSeed")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE twofactor_tokens
		    SET kind = $2, encrypted_seed = $3, counter = $4, updated_at = $5
		  WHERE id = $1`,
		rec.ID,
		int16(rec.Kind),
		rec.EncryptedSeed,
		int64(rec.Counter),
		rec.UpdatedAt,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

// AdvanceTokenCounter moves the counter from one value to the next and
// reports false when the stored counter is no longer from.
func (s *DB) AdvanceTokenCounter(ctx context.Context, id int64, from, to uint64, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "AdvanceTokenCounter")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE twofactor_tokens SET counter = $3, updated_at = $4 WHERE id = $1 AND counter = $2`,
		id,
		int64(from),
		int64(to),
		at,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

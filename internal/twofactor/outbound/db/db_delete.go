package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

// DeleteExhaustedToken removes the row only while its counter is still the
// one the final code was checked against.
func (s *DB) DeleteExhaustedToken(ctx context.Context, id int64, counter uint64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExhaustedToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`DELETE FROM twofactor_tokens WHERE id = $1 AND counter = $2`,
		id,
		int64(counter),
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// DeleteTokenByOwner removes the owner's row and returns it, or nil when
// there was none.
func (s *DB) DeleteTokenByOwner(ctx context.Context, ownerID int64) (_ *entity.TokenRecord, err error) {
	ctx, span := s.startSpan(ctx, "DeleteTokenByOwner")
	defer func() { s.endSpan(span, err) }()

	rec, err := scanToken(s.conn.QueryRow(ctx,
		`DELETE FROM twofactor_tokens WHERE owner_id = $1 RETURNING `+tokenColumns,
		ownerID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

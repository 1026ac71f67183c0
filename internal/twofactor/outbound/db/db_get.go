package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

const tokenColumns = `id, owner_id, kind, encrypted_seed, counter, created_at, updated_at`

func scanToken(row pgx.Row) (*entity.TokenRecord, error) {
	var (
		rec     entity.TokenRecord
		kind    int16
		counter int64
	)

	if err := row.Scan(&rec.ID, &rec.OwnerID, &kind, &rec.EncryptedSeed, &counter, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Kind = entity.Kind(kind)
	rec.Counter = uint64(counter)

	return &rec, nil
}

func (s *DB) GetTokenByOwner(ctx context.Context, ownerID int64) (_ *entity.TokenRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetTokenByOwner")
	defer func() { s.endSpan(span, err) }()

	rec, err := scanToken(s.conn.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM twofactor_tokens WHERE owner_id = $1`,
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

package db

import (
	"context"

	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

func (s *DB) CreateToken(ctx context.Context, rec entity.TokenRecord) (err error) {
	ctx, span := s.startSpan(ctx, "CreateToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO twofactor_tokens (`+tokenColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID,
		rec.OwnerID,
		int16(rec.Kind),
		rec.EncryptedSeed,
		int64(rec.Counter),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	err = s.mapError(err)
	return err
}

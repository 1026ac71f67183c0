package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

type (
	StatusInput struct {
		OwnerID int64 `validate:"required,gt=0"`
	}

	StatusOutput struct {
		Kind         entity.Kind
		Counter      uint64
		Remaining    uint64
		RemainingLow bool
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

func (s *Usecase) Status(ctx context.Context, in StatusInput) (*StatusOutput, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, err := s.repoDB.GetTokenByOwner(ctx, in.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get token by owner", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if rec == nil {
		slog.WarnContext(ctx, "two-factor is not enabled", "owner_id", in.OwnerID)
		return nil, goerror.NewNotFound("two-factor is not enabled")
	}

	return &StatusOutput{
		Kind:         rec.Kind,
		Counter:      rec.Counter,
		Remaining:    s.engine.Remaining(rec),
		RemainingLow: s.engine.RemainingLow(rec, 0),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

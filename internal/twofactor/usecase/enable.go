package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

type (
	EnableInput struct {
		OwnerID int64  `validate:"required,gt=0"`
		Kind    string `validate:"omitempty,oneof=totp hotp"`
		Label   string `validate:"omitempty,max=128"`
	}
)

// Enable issues a soft-token credential with a random seed. It refuses to
// replace an existing credential; Reset does that.
func (s *Usecase) Enable(ctx context.Context, in EnableInput) (*ProvisioningOutput, error) {
	ctx, span := s.startSpan(ctx, "Enable")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, err := s.engine.EnableRandom(in.OwnerID, entity.KindFromString(in.Kind))
	if err != nil {
		slog.ErrorContext(ctx, "failed to build token", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}
	rec.ID = s.uid.Generate()

	err = s.repoDB.CreateToken(ctx, *rec)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "two-factor already enabled", "owner_id", in.OwnerID)
		return nil, goerror.NewConflict("two-factor is already enabled")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to create token", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.provisioning(ctx, rec, in.Label)
}

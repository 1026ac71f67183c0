package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

type (
	ResetInput struct {
		OwnerID int64  `validate:"required,gt=0"`
		Kind    string `validate:"required,oneof=totp hotp"`
		Label   string `validate:"omitempty,max=128"`
	}
)

// Reset gives the owner a fresh random seed of the requested kind, creating
// the credential when there is none.
func (s *Usecase) Reset(ctx context.Context, in ResetInput) (*ProvisioningOutput, error) {
	ctx, span := s.startSpan(ctx, "Reset")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, err := s.repoDB.GetTokenByOwner(ctx, in.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get token by owner", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	kind := entity.KindFromString(in.Kind)
	if rec == nil {
		rec, err = s.engine.EnableRandom(in.OwnerID, kind)
	} else {
		rec.Kind = kind
		err = s.engine.ResetSeed(rec, nil)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to reset seed", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.save(ctx, rec); err != nil {
		return nil, err
	}

	return s.provisioning(ctx, rec, in.Label)
}

// save inserts rec when it has no id yet and replaces the stored seed
// otherwise.
func (s *Usecase) save(ctx context.Context, rec *entity.TokenRecord) error {
	if rec.ID == 0 {
		rec.ID = s.uid.Generate()

		err := s.repoDB.CreateToken(ctx, *rec)
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "token created concurrently", "owner_id", rec.OwnerID)
			return goerror.NewConflict("two-factor changed concurrently, try again")
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to create token", "owner_id", rec.OwnerID, "error", err)
			return goerror.NewServer(err)
		}
		return nil
	}

	err := s.repoDB.ReplaceTokenSeed(ctx, *rec)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "token removed concurrently", "owner_id", rec.OwnerID)
		return goerror.NewConflict("two-factor changed concurrently, try again")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to replace token seed", "owner_id", rec.OwnerID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

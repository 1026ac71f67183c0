package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
)

type (
	GenerateGridCardInput struct {
		Size int `validate:"omitempty,gte=1,lte=1000"`
	}

	GenerateGridCardOutput struct {
		Key   string
		Codes []string
	}

	ActivateGridCardInput struct {
		OwnerID int64  `validate:"required,gt=0"`
		Key     string `validate:"required,gridkey"`
	}

	ActivateGridCardOutput struct {
		Counter   uint64
		Remaining uint64
	}
)

// GenerateGridCard issues a key and its code sheet for printing. Nothing is
// stored; the card is bound to an owner by ActivateGridCard.
func (s *Usecase) GenerateGridCard(ctx context.Context, in GenerateGridCardInput) (*GenerateGridCardOutput, error) {
	ctx, span := s.startSpan(ctx, "GenerateGridCard")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sheet, err := s.engine.NewGridCard(in.Size)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate grid card", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &GenerateGridCardOutput{Key: sheet.Key, Codes: sheet.Codes}, nil
}

// ActivateGridCard binds a printed card to the owner, replacing any current
// credential.
func (s *Usecase) ActivateGridCard(ctx context.Context, in ActivateGridCardInput) (*ActivateGridCardOutput, error) {
	ctx, span := s.startSpan(ctx, "ActivateGridCard")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	card, err := s.engine.EnableFromGridCard(in.OwnerID, in.Key)
	if errors.Is(err, gridcard.ErrInvalidKey) {
		slog.WarnContext(ctx, "grid card checksum mismatch", "owner_id", in.OwnerID)
		return nil, goerror.NewInvalidInput(nil, "key", "key checksum does not match")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive grid card seed", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	current, err := s.repoDB.GetTokenByOwner(ctx, in.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get token by owner", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if current != nil {
		card.ID = current.ID
		card.CreatedAt = current.CreatedAt
	}

	if err := s.save(ctx, card); err != nil {
		return nil, err
	}

	return &ActivateGridCardOutput{
		Counter:   card.Counter,
		Remaining: s.engine.Remaining(card),
	}, nil
}

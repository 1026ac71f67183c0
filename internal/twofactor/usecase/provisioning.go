package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

type (
	ProvisioningInput struct {
		OwnerID int64  `validate:"required,gt=0"`
		Label   string `validate:"omitempty,max=128"`
	}

	ProvisioningOutput struct {
		Kind    entity.Kind
		Counter uint64
		Secret  string
		URI     string
		QRCode  string
	}
)

func (s *Usecase) Provisioning(ctx context.Context, in ProvisioningInput) (*ProvisioningOutput, error) {
	ctx, span := s.startSpan(ctx, "Provisioning")
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

	return s.provisioning(ctx, rec, in.Label)
}

func (s *Usecase) provisioning(ctx context.Context, rec *entity.TokenRecord, label string) (*ProvisioningOutput, error) {
	secret, err := s.engine.Base32Secret(rec)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode seed", "owner_id", rec.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	uri, err := s.engine.ProvisioningURI(rec, defaultLabel(rec.OwnerID, label))
	if err != nil {
		slog.ErrorContext(ctx, "failed to build provisioning uri", "owner_id", rec.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	qr, err := s.qrcode.DataURI(uri)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render provisioning qr code", "owner_id", rec.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProvisioningOutput{
		Kind:    rec.Kind,
		Counter: rec.Counter,
		Secret:  secret,
		URI:     uri,
		QRCode:  qr,
	}, nil
}

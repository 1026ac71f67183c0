package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
)

type (
	DisableInput struct {
		OwnerID int64 `validate:"required,gt=0"`
		Reason  string
	}
)

// Disable removes the owner's credential. It succeeds when there is none.
func (s *Usecase) Disable(ctx context.Context, in DisableInput) error {
	ctx, span := s.startSpan(ctx, "Disable")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	removed, err := s.repoDB.DeleteTokenByOwner(ctx, in.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete token by owner", "owner_id", in.OwnerID, "error", err)
		return goerror.NewServer(err)
	}
	if removed == nil {
		return nil
	}

	reason := in.Reason
	if reason == "" {
		reason = DisableReasonRequested
	}

	ev := DisabledEvent{
		OwnerID:    removed.OwnerID,
		Kind:       removed.Kind,
		Reason:     reason,
		OccurredAt: s.clock.Now(),
	}
	s.publish(ctx, "disabled", func(ctx context.Context) error {
		return s.repoMessaging.PublishDisabled(ctx, ev)
	})

	return nil
}

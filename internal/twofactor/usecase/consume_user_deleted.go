package usecase

import (
	"context"
)

type (
	ConsumeUserDeletedInput struct {
		UserID int64 `validate:"required,gt=0"`
	}
)

func (s *Usecase) ConsumeUserDeleted(ctx context.Context, in ConsumeUserDeletedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserDeleted")
	defer span.End()

	return s.Disable(ctx, DisableInput{OwnerID: in.UserID, Reason: DisableReasonUserDeleted})
}

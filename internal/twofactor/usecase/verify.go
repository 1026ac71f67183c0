package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/twofactor/internal/pkg/cache"
	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
	resultRaced    = "raced"
)

type (
	VerifyInput struct {
		OwnerID int64 `validate:"required,gt=0"`
		Code    string
	}

	VerifyOutput struct {
		Valid        bool
		Exhausted    bool
		Remaining    uint64
		RemainingLow bool
	}
)

// Verify checks code for the owner. Every rejection reason, malformed code,
// wrong code, replay or rate limit, yields Valid=false without an error. A
// consumed HOTP code is persisted before Valid=true is returned.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
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

	before := rec.Counter
	out, err := s.engine.CheckAuthCode(ctx, rec, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check auth code", "owner_id", in.OwnerID, "kind", rec.Kind.String(), "error", err)
		if errors.Is(err, cache.ErrUnavailable) {
			return nil, goerror.NewUnavailable(err)
		}
		return nil, goerror.NewServer(err)
	}

	if !out.Valid {
		s.countVerification(ctx, rec.Kind, resultRejected)
		return &VerifyOutput{Remaining: s.engine.Remaining(rec), RemainingLow: s.engine.RemainingLow(rec, 0)}, nil
	}

	if out.Delete {
		return s.exhaust(ctx, rec, before)
	}

	if out.Mutated {
		ok, err := s.repoDB.AdvanceTokenCounter(ctx, rec.ID, before, rec.Counter, s.clock.Now())
		if err != nil {
			slog.ErrorContext(ctx, "failed to advance token counter", "owner_id", in.OwnerID, "error", err)
			return nil, goerror.NewServer(err)
		}
		if !ok {
			slog.WarnContext(ctx, "token counter moved concurrently", "owner_id", in.OwnerID, "counter", before)
			s.countVerification(ctx, rec.Kind, resultRaced)
			return &VerifyOutput{}, nil
		}
	}

	s.countVerification(ctx, rec.Kind, resultAccepted)

	resp := &VerifyOutput{
		Valid:        true,
		Remaining:    s.engine.Remaining(rec),
		RemainingLow: s.engine.RemainingLow(rec, 0),
	}

	if resp.RemainingLow {
		ev := CodesLowEvent{OwnerID: rec.OwnerID, Remaining: resp.Remaining, OccurredAt: s.clock.Now()}
		s.publish(ctx, "codes_low", func(ctx context.Context) error {
			return s.repoMessaging.PublishCodesLow(ctx, ev)
		})
	}

	return resp, nil
}

// exhaust deletes a credential whose last code was just consumed. The delete
// is conditional on the counter the check ran against, so two requests racing
// on the final code cannot both succeed.
func (s *Usecase) exhaust(ctx context.Context, rec *entity.TokenRecord, before uint64) (*VerifyOutput, error) {
	ok, err := s.repoDB.DeleteExhaustedToken(ctx, rec.ID, before)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete exhausted token", "owner_id", rec.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "exhausted token changed concurrently", "owner_id", rec.OwnerID, "counter", before)
		s.countVerification(ctx, rec.Kind, resultRaced)
		return &VerifyOutput{}, nil
	}

	s.countVerification(ctx, rec.Kind, resultAccepted)
	slog.InfoContext(ctx, "two-factor credential exhausted", "owner_id", rec.OwnerID, "counter", rec.Counter)

	now := s.clock.Now()
	exhausted := ExhaustedEvent{OwnerID: rec.OwnerID, Kind: rec.Kind, Counter: rec.Counter, OccurredAt: now}
	disabled := DisabledEvent{OwnerID: rec.OwnerID, Kind: rec.Kind, Reason: DisableReasonExhausted, OccurredAt: now}
	s.publish(ctx, "exhausted", func(ctx context.Context) error {
		return s.repoMessaging.PublishExhausted(ctx, exhausted)
	})
	s.publish(ctx, "disabled", func(ctx context.Context) error {
		return s.repoMessaging.PublishDisabled(ctx, disabled)
	})

	return &VerifyOutput{Valid: true, Exhausted: true}, nil
}

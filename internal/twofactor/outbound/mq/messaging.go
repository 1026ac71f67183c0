package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/twofactor/internal/shared/event"
	"github.com/shandysiswandi/twofactor/internal/twofactor/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishExhausted(ctx context.Context, msg usecase.ExhaustedEvent) error {
	return m.publish(ctx, "PublishExhausted", event.TwoFactorExhaustedDestination, event.TwoFactorExhaustedMessage{
		OwnerID:    msg.OwnerID,
		Kind:       msg.Kind.String(),
		Counter:    msg.Counter,
		OccurredAt: msg.OccurredAt.Unix(),
	})
}

func (m *Messaging) PublishDisabled(ctx context.Context, msg usecase.DisabledEvent) error {
	return m.publish(ctx, "PublishDisabled", event.TwoFactorDisabledDestination, event.TwoFactorDisabledMessage{
		OwnerID:    msg.OwnerID,
		Kind:       msg.Kind.String(),
		Reason:     msg.Reason,
		OccurredAt: msg.OccurredAt.Unix(),
	})
}

func (m *Messaging) PublishCodesLow(ctx context.Context, msg usecase.CodesLowEvent) error {
	return m.publish(ctx, "PublishCodesLow", event.TwoFactorCodesLowDestination, event.TwoFactorCodesLowMessage{
		OwnerID:    msg.OwnerID,
		Remaining:  msg.Remaining,
		OccurredAt: msg.OccurredAt.Unix(),
	})
}

func (m *Messaging) publish(ctx context.Context, name, destination string, payload any) error {
	ctx, span := m.ins.Tracer("twofactor.outbound.mq").Start(ctx, name)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

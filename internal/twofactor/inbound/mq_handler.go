package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
	"github.com/shandysiswandi/twofactor/internal/shared/event"
	"github.com/shandysiswandi/twofactor/internal/twofactor/usecase"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// UserDeleted removes the second factor of an account deleted upstream.
func (h *MQHandler) UserDeleted(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("twofactor.inbound.mq").Start(ctx, "UserDeleted")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user deleted", "msg_body", string(body))

	var payload event.UserDeletedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user deleted", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserDeleted(ctx, usecase.ConsumeUserDeletedInput{
		UserID: payload.UserID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user deleted", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

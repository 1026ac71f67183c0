package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/twofactor/internal/pkg/config"
	"github.com/shandysiswandi/twofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
	"github.com/shandysiswandi/twofactor/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.twofactor.consumer_names")

	var consumers = []struct {
		name       string
		topic      string // destination where publisher sent message
		queueGroup string
		handler    messaging.Handler
	}{
		{
			name:       event.UserDeletedConsumerTwoFactor,
			topic:      event.UserDeletedDestination,
			queueGroup: event.UserDeletedConsumerTwoFactor,
			handler:    mqHandler.UserDeleted,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithQueueGroup(consumer.queueGroup),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
				)
			})
		}
	}
}

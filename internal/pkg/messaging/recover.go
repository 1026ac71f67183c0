package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/twofactor/internal/pkg/stacktrace"
)

// dispatch runs handler, turning a panic into an error, then acks or nacks
// when autoAck is set and the handler did not respond itself.
func dispatch(ctx context.Context, handler Handler, msg ackTracker, autoAck bool) {
	err := callHandler(ctx, handler, msg)
	if !autoAck || msg.responded() {
		return
	}

	var ackErr error
	if err == nil {
		ackErr = msg.Ack(ctx)
	} else {
		ackErr = msg.Nack(ctx)
	}
	if ackErr != nil {
		slog.WarnContext(ctx, "failed to acknowledge message", "subject", msg.Subject(), "error", ackErr)
	}
}

func callHandler(ctx context.Context, handler Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
				slog.ErrorContext(ctx, "panic in message handler", "subject", msg.Subject(), "panic", rvr, "stack", frames)
			} else {
				slog.ErrorContext(ctx, "panic in message handler", "subject", msg.Subject(), "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in handler: %v", rvr)
		}
	}()

	return handler(ctx, msg)
}

type ackTracker interface {
	Message
	responded() bool
}

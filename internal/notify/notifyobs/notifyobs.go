package notifyobs

import (
	"context"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/trace"
)

type observableSender struct {
	sender interfaces.Sender
}

var _ interfaces.Sender = (*observableSender)(nil)

// Wrap decorates a sender with spans and logs.
func Wrap(sender interfaces.Sender) interfaces.Sender {
	return &observableSender{sender: sender}
}

func (o *observableSender) Recipient() string {
	return o.sender.Recipient()
}

func (o *observableSender) Send(ctx context.Context, msg interfaces.Message) (int, error) {
	ctx, span := trace.StartSpan(ctx, "notify.Send")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Sending notification",
		"to", msg.To,
		"subject", msg.Subject,
	)

	code, err := o.sender.Send(ctx, msg)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Notification delivery failed", err,
			"to", msg.To,
			"status_code", code,
		)
		return code, err
	}

	logger.InfoSkip(ctx, 1, "Notification delivered",
		"to", msg.To,
		"status_code", code,
	)
	return code, nil
}

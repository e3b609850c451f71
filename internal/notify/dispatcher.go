// Package notify decides whether a trade alert is sent and delivers it.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/normalize"
	"tradeshot/internal/types"
)

const maxReasonLen = 200

// AttemptLog receives one entry per delivery attempt.
type AttemptLog interface {
	AppendNotification(types.NotificationAttempt) error
}

type Dispatcher struct {
	sender     interfaces.Sender
	summarizer interfaces.Summarizer
	attempts   AttemptLog
	now        func() time.Time
}

// NewDispatcher builds a dispatcher. Any collaborator may be nil: without a
// sender nothing is configured, without a summarizer PlainSummary is used,
// without an attempt log attempts are only logged.
func NewDispatcher(sender interfaces.Sender, summarizer interfaces.Summarizer, attempts AttemptLog) *Dispatcher {
	return &Dispatcher{sender: sender, summarizer: summarizer, attempts: attempts, now: time.Now}
}

// Available reports whether a sender is configured.
func (d *Dispatcher) Available() bool {
	return d != nil && d.sender != nil
}

// DecideAndDispatch applies the decision table, first match wins:
//
//	not requested         -> "not requested"
//	no sender             -> "not configured"
//	no PnL amount         -> "no amount to report" (sender not called)
//	otherwise             -> "sent to <address>" or "failed: <reason>"
//
// A PnL of exactly zero is a recovered amount and is sent. Nothing the sender
// does, including panicking, escapes as anything but a status.
func (d *Dispatcher) DecideAndDispatch(ctx context.Context, rec types.TradeRecord, requested, available bool) types.NotificationStatus {
	var status types.NotificationStatus
	switch {
	case !requested:
		status = types.NotRequested()
	case !available:
		status = types.NotConfigured()
	case !rec.HasPnL():
		status = types.NoAmountToReport()
	default:
		status = d.dispatch(ctx, rec)
	}
	logger.Notification(ctx, rec.TradeID, status.String(), status.Sent(), "ticker", rec.Ticker)
	return status
}

func (d *Dispatcher) dispatch(ctx context.Context, rec types.TradeRecord) (status types.NotificationStatus) {
	if d == nil || d.sender == nil {
		return types.Failed("no sender configured")
	}

	attempt := types.NotificationAttempt{
		AttemptID: uuid.NewString(),
		TradeID:   rec.TradeID,
		Timestamp: d.now().UTC().Format(time.RFC3339Nano),
	}
	defer func() {
		if r := recover(); r != nil {
			status = types.Failed(reason(fmt.Sprintf("panic: %v", r)))
		}
		attempt.Status = status.String()
		attempt.Success = status.Sent()
		if !attempt.Success {
			attempt.Error = status.Detail
		}
		d.recordAttempt(ctx, attempt)
	}()

	attempt.Recipient = d.sender.Recipient()

	summary := d.summary(ctx, rec)
	subject, text, html, err := RenderEmail(rec, summary)
	if err != nil {
		return types.Failed(reason(err.Error()))
	}
	attempt.Subject = subject

	code, err := d.sender.Send(ctx, interfaces.Message{
		To:      attempt.Recipient,
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
	attempt.StatusCode = code
	if err != nil {
		return types.Failed(reason(err.Error()))
	}
	return types.SentTo(attempt.Recipient)
}

func (d *Dispatcher) summary(ctx context.Context, rec types.TradeRecord) string {
	if d.summarizer == nil {
		return PlainSummary(rec)
	}
	s, err := d.summarizer.Summarize(ctx, rec)
	if err != nil || normalize.Sanitize(s) == "" {
		if err != nil {
			logger.Warn(ctx, "Summary generation failed, using plain summary", "trade_id", rec.TradeID, "error", err)
		}
		return PlainSummary(rec)
	}
	return s
}

func (d *Dispatcher) recordAttempt(ctx context.Context, a types.NotificationAttempt) {
	if d.attempts == nil {
		return
	}
	if err := d.attempts.AppendNotification(a); err != nil {
		logger.Warn(ctx, "Failed to record notification attempt", "trade_id", a.TradeID, "error", err)
	}
}

// reason flattens an error message into a single short status detail.
func reason(s string) string {
	s = normalize.Sanitize(s)
	for _, r := range []string{"\r\n", "\n", "\r", "\t"} {
		s = strings.ReplaceAll(s, r, " ")
	}
	if len(s) > maxReasonLen {
		s = s[:maxReasonLen] + "..."
	}
	if s == "" {
		s = "unknown error"
	}
	return s
}

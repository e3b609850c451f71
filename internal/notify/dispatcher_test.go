package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/types"
)

type fakeSender struct {
	mu    sync.Mutex
	to    string
	code  int
	err   error
	panic any
	sent  []interfaces.Message
}

func (f *fakeSender) Recipient() string { return f.to }

func (f *fakeSender) Send(_ context.Context, msg interfaces.Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic != nil {
		panic(f.panic)
	}
	f.sent = append(f.sent, msg)
	return f.code, f.err
}

func (f *fakeSender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSummarizer struct {
	text string
	err  error
}

func (f fakeSummarizer) Summarize(context.Context, types.TradeRecord) (string, error) {
	return f.text, f.err
}

type memAttempts struct {
	got []types.NotificationAttempt
}

func (m *memAttempts) AppendNotification(a types.NotificationAttempt) error {
	m.got = append(m.got, a)
	return nil
}

func tradeWithPnL(pnl string) types.TradeRecord {
	rec := types.TradeRecord{
		TradeID:    "01TEST",
		Ticker:     "NQ1!",
		Direction:  types.DirectionShort,
		EntryPrice: types.Dec("22880.75"),
		ExitPrice:  types.Dec("22878.0"),
		Confidence: 90,
		Timestamp:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if pnl != "" {
		rec.PnLAmount = types.Dec(pnl)
	}
	return rec
}

func TestDecisionTable(t *testing.T) {
	tests := []struct {
		name      string
		requested bool
		available bool
		pnl       string
		want      types.NotificationStatus
		calls     int
	}{
		{"not requested", false, true, "2220.00", types.NotRequested(), 0},
		{"not requested wins over missing sender", false, false, "", types.NotRequested(), 0},
		{"not configured", true, false, "2220.00", types.NotConfigured(), 0},
		{"no amount", true, true, "", types.NoAmountToReport(), 0},
		{"sent", true, true, "2220.00", types.SentTo("me@example.com"), 1},
		{"zero pnl is present", true, true, "0", types.SentTo("me@example.com"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{to: "me@example.com", code: 202}
			log := &memAttempts{}
			d := NewDispatcher(sender, nil, log)

			got := d.DecideAndDispatch(context.Background(), tradeWithPnL(tt.pnl), tt.requested, tt.available)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.calls, sender.calls())
			assert.Len(t, log.got, tt.calls)
		})
	}
}

func TestDispatchSuccessRecordsAttempt(t *testing.T) {
	sender := &fakeSender{to: "me@example.com", code: 202}
	log := &memAttempts{}
	d := NewDispatcher(sender, fakeSummarizer{text: "Nice short scalp."}, log)

	got := d.DecideAndDispatch(context.Background(), tradeWithPnL("2220.00"), true, true)

	assert.Equal(t, "sent to me@example.com", got.String())
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "me@example.com", msg.To)
	assert.Equal(t, "Trade Alert: NQ1! - PROFIT", msg.Subject)
	assert.Contains(t, msg.Text, "Nice short scalp.")
	assert.Contains(t, msg.Text, "+$2220.00")

	require.Len(t, log.got, 1)
	a := log.got[0]
	assert.True(t, a.Success)
	assert.Equal(t, 202, a.StatusCode)
	assert.Equal(t, "01TEST", a.TradeID)
	assert.NotEmpty(t, a.AttemptID)
	assert.Equal(t, "Trade Alert: NQ1! - PROFIT", a.Subject)
}

func TestDispatchFailureBecomesStatus(t *testing.T) {
	sender := &fakeSender{to: "me@example.com", code: 401, err: errors.New("HTTP 401: bad key\nmore")}
	log := &memAttempts{}
	d := NewDispatcher(sender, nil, log)

	got := d.DecideAndDispatch(context.Background(), tradeWithPnL("-15"), true, true)

	assert.Equal(t, types.NotificationFailed, got.Kind)
	assert.Equal(t, "failed: HTTP 401: bad key more", got.String())
	require.Len(t, log.got, 1)
	assert.False(t, log.got[0].Success)
	assert.Equal(t, 401, log.got[0].StatusCode)
	assert.Equal(t, "Trade Alert: NQ1! - LOSS", sender.sent[0].Subject)
}

func TestDispatchRecoversPanics(t *testing.T) {
	sender := &fakeSender{to: "me@example.com", panic: "boom"}
	log := &memAttempts{}
	d := NewDispatcher(sender, nil, log)

	var got types.NotificationStatus
	require.NotPanics(t, func() {
		got = d.DecideAndDispatch(context.Background(), tradeWithPnL("10"), true, true)
	})
	assert.Equal(t, types.Failed("panic: boom"), got)
	require.Len(t, log.got, 1)
	assert.False(t, log.got[0].Success)
}

func TestDispatchWithoutSender(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	assert.False(t, d.Available())

	got := d.DecideAndDispatch(context.Background(), tradeWithPnL("10"), true, true)
	assert.Equal(t, types.NotificationFailed, got.Kind)
}

func TestSummaryFallback(t *testing.T) {
	sender := &fakeSender{to: "me@example.com", code: 202}
	d := NewDispatcher(sender, fakeSummarizer{err: errors.New("llm down")}, nil)

	got := d.DecideAndDispatch(context.Background(), tradeWithPnL("5"), true, true)

	require.True(t, got.Sent())
	assert.Contains(t, sender.sent[0].Text, "NQ1! short trade, entry 22880.75, exit 22878, PnL +$5.00.")
}

func TestReasonIsBounded(t *testing.T) {
	r := reason(strings.Repeat("x", 500))
	assert.Len(t, r, maxReasonLen+3)
	assert.Equal(t, "unknown error", reason("\x00"))
}

// Package logger is the process-wide structured logger. Every entry carries
// the trace and span ids of ctx when tracing is on.
package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"tradeshot/internal/trace"
)

const (
	ServiceName    = "tradeshot"
	ServiceVersion = "1.0.0"
)

var (
	globalLogger *slog.Logger
	// detailed adds caller source to every entry and enables Debug.
	detailed bool
)

// Init configures the logger from LOG_LEVEL (DEBUG|INFO|WARN|ERROR),
// LOG_FORMAT (json|text) and LOG_DETAILED. Output goes to stderr because
// stdout carries command results.
func Init() error {
	level := parseLevel(envOr("LOG_LEVEL", "INFO"))
	detailed = envOr("LOG_DETAILED", "false") == "true"
	if detailed && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(envOr("LOG_FORMAT", "json"), "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	globalLogger = slog.New(handler).With("service", ServiceName)
	slog.SetDefault(globalLogger)
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Debug(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, msg, 2, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, msg, 2, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, msg, 2, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelError, msg, 2, args...)
}

// ErrorWithErr logs at error level and marks the current span failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	markSpan(ctx, err)
	emit(ctx, slog.LevelError, msg, 2, append([]any{"error", err}, args...)...)
}

// The *Skip variants are for decorators: skip extra frames are dropped so
// the reported source is the decorator's caller.

func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, msg, 2+skip, args...)
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, msg, 2+skip, args...)
}

func WarnSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, msg, 2+skip, args...)
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	markSpan(ctx, err)
	emit(ctx, slog.LevelError, msg, 2+skip, append([]any{"error", err}, args...)...)
}

func markSpan(ctx context.Context, err error) {
	if err == nil || !trace.Enabled() {
		return
	}
	span := oteltrace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// emit writes one entry. skip is the number of frames between runtime.Caller
// and the code that asked to log.
func emit(ctx context.Context, level slog.Level, msg string, skip int, args ...any) {
	l := globalLogger
	if l == nil {
		l = slog.Default()
	}
	if !l.Enabled(ctx, level) {
		return
	}

	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		args = append([]any{"trace_id", traceID, "span_id", spanID}, args...)
	}
	if detailed {
		if pc, file, line, ok := runtime.Caller(skip); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				args = append(args, "source", slog.GroupValue(
					slog.String("function", fn.Name()),
					slog.String("file", file),
					slog.Int("line", line),
				))
			}
		}
	}
	l.Log(ctx, level, msg, args...)
}

// OperationTimer times one operation and closes its span.
type OperationTimer struct {
	ctx    context.Context
	span   oteltrace.Span
	start  time.Time
	fields []any
}

// StartOperation opens a span named operation and returns a timer whose
// context carries it. fields become span attributes and log fields.
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	ctx, span := trace.StartSpan(ctx, operation)
	span.SetAttributes(attributes(fields)...)
	Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)
	return &OperationTimer{ctx: ctx, span: span, start: time.Now(), fields: fields}
}

func (ot *OperationTimer) GetContext() context.Context {
	return ot.ctx
}

func (ot *OperationTimer) End(fields ...any) {
	elapsed := time.Since(ot.start).Milliseconds()
	ot.span.SetAttributes(attribute.Int64("duration_ms", elapsed))
	ot.span.SetAttributes(attributes(fields)...)
	ot.span.SetStatus(codes.Ok, "")
	ot.span.End()

	all := append(append([]any{}, ot.fields...), "duration_ms", elapsed)
	Debug(ot.ctx, "Operation completed", append(all, fields...)...)
}

func (ot *OperationTimer) EndWithError(err error, fields ...any) {
	elapsed := time.Since(ot.start).Milliseconds()
	ot.span.SetAttributes(attribute.Int64("duration_ms", elapsed))
	markSpan(ot.ctx, err)
	ot.span.End()

	all := append(append([]any{}, ot.fields...), "duration_ms", elapsed, "error", err)
	emit(ot.ctx, slog.LevelWarn, "Operation failed", 2, append(all, fields...)...)
}

// attributes converts alternating key/value pairs into span attributes,
// ignoring values of unsupported types.
func attributes(kv []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}

// Trade records an extracted trade. It is logged at info level so the trail
// survives LOG_LEVEL=INFO.
func Trade(ctx context.Context, tradeID, ticker, direction, pnl string, confidence float64, fields ...any) {
	event(ctx, "trade_extracted",
		attribute.String("trade_id", tradeID),
		attribute.String("ticker", ticker),
		attribute.String("direction", direction),
		attribute.String("pnl_amount", pnl),
		attribute.Float64("confidence", confidence),
	)
	emit(ctx, slog.LevelInfo, "Trade extracted", 2, append([]any{
		"type", "TRADE",
		"trade_id", tradeID,
		"ticker", ticker,
		"direction", direction,
		"pnl_amount", pnl,
		"confidence", confidence,
	}, fields...)...)
}

// Notification records the outcome of the email step; failures log at warn.
func Notification(ctx context.Context, tradeID, status string, sent bool, fields ...any) {
	event(ctx, "notification",
		attribute.String("trade_id", tradeID),
		attribute.String("status", status),
		attribute.Bool("sent", sent),
	)
	level := slog.LevelInfo
	if strings.HasPrefix(status, "failed") {
		level = slog.LevelWarn
	}
	emit(ctx, level, "Notification decided", 2, append([]any{
		"type", "NOTIFICATION",
		"trade_id", tradeID,
		"status", status,
		"sent", sent,
	}, fields...)...)
}

func event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if !trace.Enabled() {
		return
	}
	span := oteltrace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent(name, oteltrace.WithAttributes(attrs...))
	}
}

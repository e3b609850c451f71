package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledIsNoop(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	require.NoError(t, Init("test", "0"))

	ctx := context.Background()
	got, span := StartSpan(ctx, "op")
	span.End()

	assert.Equal(t, ctx, got)
	assert.False(t, Enabled())
	_, _, ok := GetTraceFields(got)
	assert.False(t, ok)
	assert.NoError(t, Shutdown(ctx))
}

func TestEnabledCarriesIDs(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "true")
	require.NoError(t, Init("test", "0"))
	t.Cleanup(func() { _ = Shutdown(context.Background()) })

	ctx, span := StartSpan(context.Background(), "op")
	defer span.End()

	traceID, spanID, ok := GetTraceFields(ctx)
	require.True(t, ok)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
}

func TestSampleRatio(t *testing.T) {
	t.Setenv("LOG_TRACE_SAMPLE_RATIO", "0.25")
	assert.Equal(t, 0.25, sampleRatio())
	t.Setenv("LOG_TRACE_SAMPLE_RATIO", "7")
	assert.Equal(t, 1.0, sampleRatio())
	t.Setenv("LOG_TRACE_SAMPLE_RATIO", "")
	assert.Equal(t, 1.0, sampleRatio())
}

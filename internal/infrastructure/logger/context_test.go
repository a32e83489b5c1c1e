package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAndFromContext(t *testing.T) {
	log := zap.NewExample()
	ctx := WithContext(context.Background(), log)

	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_MissingLogger(t *testing.T) {
	log := FromContext(context.Background())

	require.NotNil(t, log)
	// The fallback is a no-op logger, logging through it must not panic.
	log.Info("ignored")
}

func TestRequestAndTenantIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithTenantID(ctx, "tenant-abc")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "tenant-abc", GetTenantID(ctx))
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetTenantID(context.Background()))
}

func loggedFields(entry observer.LoggedEntry) map[string]string {
	fields := make(map[string]string)
	for _, f := range entry.Context {
		fields[f.Key] = f.String
	}
	return fields
}

func TestEnrich_AddsCorrelationFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithTenantID(ctx, "tenant-abc")

	Enrich(ctx, log).Info("test")

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := loggedFields(logs[0])
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "tenant-abc", fields["tenant_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestEnrich_AddsTraceIDsFromSpan(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	Enrich(ctx, log).Info("test")

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := loggedFields(logs[0])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestEnrich_NoSpanNoFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	Enrich(context.Background(), log).Info("test")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Context)
}

func TestEnrich_NilLogger(t *testing.T) {
	log := Enrich(context.Background(), nil)

	require.NotNil(t, log)
	log.Info("ignored")
}

func TestL_UsesContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	ctx := WithContext(context.Background(), log)
	ctx = WithRequestID(ctx, "req-456")

	L(ctx).Info("handled")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "handled", logs[0].Message)
	assert.Equal(t, "req-456", loggedFields(logs[0])["request_id"])
}

func TestL_MissingLoggerIsNoop(t *testing.T) {
	// Must not panic without an attached logger.
	L(context.Background()).Info("ignored")
}

package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestInitLogger_WritesServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(LoggerOptions{Service: "medlib-test", Environment: "test", Level: "info", Output: &buf})

	ctx := WithRequestID(context.Background(), "req-123")
	LoggerFromContext(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"service":"medlib-test"`)
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestRecordMetrics_NilMetricsIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordQueryMetric(context.Background(), nil, "surgical", "search", 3)
		RecordCacheHit(context.Background(), nil, "/api/stores")
	})
}

func TestInitMetrics_WithDefaultProvider(t *testing.T) {
	metrics, err := InitMetrics()
	assert.NoError(t, err)
	assert.NotPanics(t, func() {
		RecordQueryMetric(context.Background(), metrics, "emergency", "filter", 2)
		RecordExportMetric(context.Background(), metrics, "postgres", 0)
	})
}

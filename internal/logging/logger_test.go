package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func initJSON(t *testing.T, environment, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Init(Options{
		ServiceName: "parking-test",
		Environment: environment,
		Level:       level,
		Writer:      &buf,
	}))
	return &buf
}

func TestInitWritesJSON(t *testing.T) {
	buf := initJSON(t, "production", "")

	Info(context.Background(), "spot assigned", "spotId", 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "spot assigned", record["msg"])
	assert.Equal(t, "parking-test", record["service"])
	assert.Equal(t, "production", record["environment"])
	assert.EqualValues(t, 1, record["spotId"])
	assert.NotContains(t, record, "traceId")
}

func TestDebugOnlyInDevelopment(t *testing.T) {
	buf := initJSON(t, "production", "")
	Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	buf = initJSON(t, "development", "")
	Debug(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level, env string
		want       slog.Level
	}{
		{"", "development", slog.LevelDebug},
		{"", "staging", slog.LevelInfo},
		{"warn", "development", slog.LevelWarn},
		{" ERROR ", "production", slog.LevelError},
		{"debug", "production", slog.LevelDebug},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.level, tt.env)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "level %q env %q", tt.level, tt.env)
	}

	_, err := ParseLevel("verbose", "production")
	assert.Error(t, err)

	assert.Error(t, Init(Options{Level: "verbose"}))
}

func TestLevelAppliesToOTelExport(t *testing.T) {
	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	global.SetLoggerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	buf := initJSON(t, "development", "warn")

	Info(context.Background(), "vehicle parked")
	Warn(context.Background(), "exit rejected")

	assert.NotContains(t, buf.String(), "vehicle parked")
	assert.Contains(t, buf.String(), "exit rejected")
	assert.Equal(t, []string{"exit rejected"}, exporter.bodies())
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	buf := initJSON(t, "production", "")

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Warn(ctx, "ticket closed twice")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, span.SpanContext().TraceID().String(), record["traceId"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["spanId"])
}

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

var logger *slog.Logger

type Options struct {
	ServiceName string
	Environment string
	// Level is debug, info, warn or error. Empty means debug in development
	// and info everywhere else.
	Level string
	// Writer receives the JSON records. Defaults to stdout.
	Writer io.Writer
}

// ParseLevel resolves a configured level name against the environment default.
func ParseLevel(level, environment string) (slog.Level, error) {
	if strings.TrimSpace(level) == "" {
		if environment == "development" {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// Init writes JSON logs and forwards records at or above the level to the
// global OpenTelemetry logger provider.
func Init(opts Options) error {
	level, err := ParseLevel(opts.Level, opts.Environment)
	if err != nil {
		return err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	otelHandler := otelslog.NewHandler(opts.ServiceName, otelslog.WithLoggerProvider(global.GetLoggerProvider()))
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	logger = slog.New(&multiHandler{
		level:    level,
		handlers: []slog.Handler{otelHandler, jsonHandler},
	}).With(
		slog.String("service", opts.ServiceName),
		slog.String("environment", opts.Environment),
	)
	slog.SetDefault(logger)
	return nil
}

func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// WithContext attaches the trace and span ids of the active span, if any.
func WithContext(ctx context.Context) *slog.Logger {
	l := Logger()
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return l
	}
	return l.With(
		slog.String("traceId", span.SpanContext().TraceID().String()),
		slog.String("spanId", span.SpanContext().SpanID().String()),
	)
}

func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).DebugContext(ctx, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).InfoContext(ctx, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).WarnContext(ctx, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).ErrorContext(ctx, msg, args...)
}

// multiHandler fans records out to every handler. The otelslog handler
// accepts all levels, so the configured level is enforced here.
type multiHandler struct {
	level    slog.Leveler
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level.Level() {
		return false
	}
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{level: h.level, handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{level: h.level, handlers: handlers}
}

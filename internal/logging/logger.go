// Package logging provides ECS-compatible structured logging for json-masker.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
)

const (
	// Log levels (re-exported for convenience)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger with ECS-compatible defaults.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level       slog.Level
	Output      io.Writer
	Environment string
}

// DefaultConfig returns default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:       ParseLevel(getEnv(constants.EnvLogLevel, constants.LogLevelInfo)),
		Output:      os.Stdout,
		Environment: getEnv(constants.EnvEnvironment, constants.DefaultEnvironment),
	}
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values yield Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case constants.LogLevelDebug:
		return LevelDebug
	case constants.LogLevelWarn, "WARNING":
		return LevelWarn
	case constants.LogLevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// New creates a new ECS-compatible logger.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// ECS field mapping
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{Key: constants.ECSFieldTimestamp, Value: a.Value}
			case slog.LevelKey:
				return slog.Attr{Key: constants.ECSFieldLogLevel, Value: slog.StringValue(a.Value.String())}
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(cfg.Output, opts)
	baseLogger := slog.New(handler)

	// Add ECS base fields
	ecsLogger := baseLogger.With(
		slog.Group("ecs",
			slog.String("version", constants.ECSVersion),
		),
		slog.Group("service",
			slog.String("name", constants.ServiceName),
			slog.String("version", constants.ServiceVersion),
			slog.String("environment", cfg.Environment),
		),
	)

	return &Logger{Logger: ecsLogger}
}

// WithContext returns a logger carrying the OpenTelemetry trace/span IDs of ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.WithTrace(sc.TraceID().String(), sc.SpanID().String())
}

// WithRequest returns a logger with HTTP request metadata.
func (l *Logger) WithRequest(method, path, host string) *Logger {
	return &Logger{
		Logger: l.With(
			slog.Group("http",
				slog.String("request.method", method),
				slog.String("url.path", path),
			),
			slog.String("host.name", host),
		),
	}
}

// WithTrace returns a logger with trace context from B3 headers.
func (l *Logger) WithTrace(traceID, spanID string) *Logger {
	if traceID == "" {
		return l
	}
	attrs := []any{
		slog.String(constants.ECSFieldTraceID, traceID),
	}
	if spanID != "" {
		attrs = append(attrs, slog.String(constants.ECSFieldSpanID, spanID))
	}
	return &Logger{
		Logger: l.With(attrs...),
	}
}

// WithDuration returns a logger with duration information.
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{
		Logger: l.With(
			slog.Group("event",
				slog.Float64("duration_ms", float64(d.Microseconds())/1000),
			),
		),
	}
}

// MaskingEnabled records the configured field list at startup.
func (l *Logger) MaskingEnabled(fields string) {
	l.Info("Masked fields property: "+fields,
		slog.String(constants.ECSFieldEventAction, constants.EventActionMaskInit),
		slog.String(constants.ECSFieldMaskFields, fields),
	)
}

// MaskingDisabled records that no fields are configured.
func (l *Logger) MaskingDisabled() {
	l.Warn("No fields configured for masking. Skipping masking.",
		slog.String(constants.ECSFieldEventAction, constants.EventActionMaskInit),
	)
}

// Masked records the output of one masking call.
func (l *Logger) Masked(result string, matches int) {
	l.Info("Masked Response: "+result,
		slog.String(constants.ECSFieldEventAction, constants.EventActionMask),
		slog.String(constants.ECSFieldEventOutcome, constants.EventOutcomeSuccess),
		slog.Int(constants.ECSFieldMaskMatches, matches),
	)
}

// AuthDeny logs a rejected API call. The token is masked before it is written.
func (l *Logger) AuthDeny(method, path, host, token, reason string, err error) {
	attrs := []any{
		slog.String(constants.ECSFieldEventAction, constants.EventActionAuthentication),
		slog.String(constants.ECSFieldEventOutcome, constants.EventOutcomeFailure),
		slog.String(constants.ECSFieldEventReason, reason),
		slog.String(constants.ECSFieldToken, MaskToken(token)),
	}
	if err != nil {
		attrs = append(attrs, slog.String(constants.ECSFieldErrorMessage, err.Error()))
	}
	l.WithRequest(method, path, host).Warn("Authentication failed", attrs...)
}

// AuthAllow logs an authenticated API call with the subject partially masked.
func (l *Logger) AuthAllow(method, path, host, subject string) {
	l.WithRequest(method, path, host).Debug("Authentication succeeded",
		slog.String(constants.ECSFieldEventAction, constants.EventActionAuthentication),
		slog.String(constants.ECSFieldEventOutcome, constants.EventOutcomeSuccess),
		slog.String(constants.ECSFieldUserID, MaskSubject(subject)),
	)
}

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// NewTestLogger creates a logger for testing (discards output).
func NewTestLogger() *Logger {
	cfg := &Config{
		Level:       LevelDebug,
		Output:      io.Discard,
		Environment: "test",
	}
	return New(cfg)
}

// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ClientIPKey is the context key for the resolved client IP
	ClientIPKey contextKey = "client_ip"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger writing to w. Development gets a text
// handler at debug level; every other environment logs JSON at info.
func NewWithWriter(env string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithContext returns a logger carrying request_id and client_ip from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	out := l
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		out = out.WithRequestID(requestID)
	}
	if clientIP, ok := ctx.Value(ClientIPKey).(string); ok && clientIP != "" {
		out = &Logger{Logger: out.With(slog.String("client_ip", clientIP))}
	}
	return out
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With(slog.String("request_id", requestID))}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// LeadAccepted logs a lead that reached a durable destination.
func (l *Logger) LeadAccepted(leadID, destination string) {
	l.Info("lead_accepted",
		slog.String("lead_id", leadID),
		slog.String("destination", destination),
	)
}

// SinkFailure logs a failed remote sink or fallback operation.
func (l *Logger) SinkFailure(operation, leadID string, err error) {
	l.Error("sink_failure",
		slog.String("operation", operation),
		slog.String("lead_id", leadID),
		slog.String("error", err.Error()),
	)
}

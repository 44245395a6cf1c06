// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"naql_backend/internal/events"
	"naql_backend/platform/config"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.AdminConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP, CORS and admin auth).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Metrics backs /metrics and the request middleware. May be nil.
	Metrics *metrics.Metrics
	// Health is used for readiness checks (Redis ping). May be nil.
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}

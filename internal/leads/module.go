// Package leads provides the lead intake bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"naql_backend/internal/events"
	apphttp "naql_backend/internal/http"
	"naql_backend/internal/leads/handler"
	"naql_backend/internal/leads/ports"
	"naql_backend/internal/leads/reference"
	"naql_backend/internal/leads/schema"
	"naql_backend/internal/leads/service"
	"naql_backend/platform/config"
	"naql_backend/platform/idempotency"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"
	"naql_backend/platform/ratelimit"
	"naql_backend/platform/validator"
)

// Config is the subset of settings the leads module reads.
type Config interface {
	config.IntakeConfig
	config.ContactConfig
	config.SheetsConfig
}

// Deps are the collaborators wired in by the composition root. Fallback
// and Replay are optional and must be left nil, not typed-nil, when absent.
type Deps struct {
	Config      Config
	Validator   *validator.Validator
	Places      reference.Directory // nil selects the embedded list
	Limiter     ratelimit.Limiter
	Idempotency idempotency.Store
	Sink        interface {
		ports.LeadSink
		ports.SinkInspector
	}
	Fallback ports.LeadFallback
	Replay   ports.ReplayQueue
	Bus      events.Bus
	Metrics  *metrics.Metrics
	Log      *logger.Logger
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	service     *service.Service
	handler     *handler.Handler
	diagnostics *handler.DiagnosticsHandler
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(d Deps) *Module {
	svc := service.New(service.Deps{
		Schema:      schema.New(d.Validator, d.Places),
		Limiter:     d.Limiter,
		Idempotency: d.Idempotency,
		Sink:        d.Sink,
		Fallback:    d.Fallback,
		Replay:      d.Replay,
		Bus:         d.Bus,
		Metrics:     d.Metrics,
		Log:         d.Log,
		DevBypass:   d.Config.IsDevBypassEnabled(),
		SinkTimeout: d.Config.GetSinkTimeout(),
	})

	return &Module{
		service:     svc,
		handler:     handler.New(svc, d.Config),
		diagnostics: handler.NewDiagnostics(d.Sink, d.Log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the intake service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public lead endpoints and the sink diagnostics.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/lead"))
	m.diagnostics.RegisterRoutes(ctx.Diagnostics)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

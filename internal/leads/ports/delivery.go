// Package ports defines the interfaces the leads module needs from the
// destinations it delivers to. Implementations live in internal/adapters and
// the destination packages.
package ports

import (
	"context"
	"time"

	"naql_backend/internal/leads/domain"
)

// LeadSink is the system of record for accepted leads.
type LeadSink interface {
	// Probe checks connectivity before an append is attempted.
	Probe(ctx context.Context) error
	AppendLead(ctx context.Context, lead domain.ServerLead) error
}

// SinkInfo identifies the sink target.
type SinkInfo struct {
	Title string
	ID    string
}

// SinkStats summarizes the sink contents.
type SinkStats struct {
	TotalLeads int
	LastUpdate time.Time
}

// SinkInspector backs the diagnostics endpoints.
type SinkInspector interface {
	TestConnection(ctx context.Context) (SinkInfo, error)
	EnsureHeaderRow(ctx context.Context) error
	ReadStats(ctx context.Context) (SinkStats, error)
}

// LeadFallback receives a lead the sink rejected. Exactly one attempt is made.
type LeadFallback interface {
	Configured() bool
	Deliver(ctx context.Context, lead domain.ServerLead) error
}

// ReplayQueue durably stores a lead for later redelivery.
type ReplayQueue interface {
	EnqueueRedelivery(ctx context.Context, lead domain.ServerLead, reason string) error
}

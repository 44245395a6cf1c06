// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"naql_backend/internal/leads/domain"
	"naql_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Delivery destinations recorded on lead events.
const (
	DestinationSheets   = "sheets"
	DestinationFallback = "fallback"
	DestinationQueue    = "queue"
	DestinationNone     = "none"
)

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadSubmitted is published once a lead has been accepted and persisted by
// the sink or the fallback webhook.
type LeadSubmitted struct {
	BaseEvent
	Lead        domain.ServerLead `json:"lead"`
	Destination string            `json:"destination"`
}

func (e LeadSubmitted) EventName() string { return "leads.lead.submitted" }

// LeadQueued is published when neither the sink nor the fallback accepted the
// lead and it was handed to the replay queue.
type LeadQueued struct {
	BaseEvent
	Lead   domain.ServerLead `json:"lead"`
	Reason string            `json:"reason"`
}

func (e LeadQueued) EventName() string { return "leads.lead.queued" }

// LeadRedelivered is published when the replay worker delivers a queued lead.
type LeadRedelivered struct {
	BaseEvent
	Lead        domain.ServerLead `json:"lead"`
	Destination string            `json:"destination"`
	Attempt     int               `json:"attempt"`
}

func (e LeadRedelivered) EventName() string { return "leads.lead.redelivered" }

// LeadDeliveryFailed is published when a lead could not be persisted
// anywhere: the request failed without a queue, or replay retries ran out.
type LeadDeliveryFailed struct {
	BaseEvent
	Lead   domain.ServerLead `json:"lead"`
	Reason string            `json:"reason"`
}

func (e LeadDeliveryFailed) EventName() string { return "leads.lead.delivery_failed" }

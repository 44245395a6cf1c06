// Package events re-exports the platform event bus so domain modules can
// import bus and event definitions from one place.
package events

import (
	platformevents "naql_backend/platform/events"
	"naql_backend/platform/logger"
)

// InMemoryBus is a type alias to the platform InMemoryBus.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

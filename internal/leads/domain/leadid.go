package domain

import (
	"strconv"
	"sync"
	"time"
)

// LeadIDPrefix marks leads taken by the Jeddah branch.
const LeadIDPrefix = "JED-"

// IDGenerator issues lead ids of the form JED-<unix millis>. Ids from one
// generator strictly increase even when two requests share a millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator on the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock creates a generator on a custom clock.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

// Next returns the next lead id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return LeadIDPrefix + strconv.FormatInt(ms, 10)
}

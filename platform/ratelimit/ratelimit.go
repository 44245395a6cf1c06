// Package ratelimit bounds how many requests one identity may make inside a
// rolling window. Each accepted request is logged with its timestamp and the
// log is pruned to the window on every check, so at most Limit requests are
// accepted in any window of length Window.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request for key may proceed. Allow records the
// request when it is accepted; check and record happen atomically.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Policy describes a sliding window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultLeadPolicy is five accepted submissions per minute.
var DefaultLeadPolicy = Policy{Limit: 5, Window: time.Minute}

func (p Policy) normalized() Policy {
	if p.Limit <= 0 {
		p.Limit = DefaultLeadPolicy.Limit
	}
	if p.Window <= 0 {
		p.Window = DefaultLeadPolicy.Window
	}
	return p
}

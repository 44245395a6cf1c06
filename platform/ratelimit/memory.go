package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process sliding-window log. It is only correct for a
// single instance; deployments with more than one replica use Redis.
type Memory struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	policy Policy
	now    func() time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory creates an in-process limiter.
func NewMemory(policy Policy) *Memory {
	return &Memory{
		hits:   make(map[string][]time.Time),
		policy: policy.normalized(),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	kept := prune(m.hits[key], now, m.policy.Window)

	if len(kept) >= m.policy.Limit {
		m.hits[key] = kept
		return Decision{
			Allowed:    false,
			RetryAfter: m.policy.Window - now.Sub(kept[0]),
		}, nil
	}

	kept = append(kept, now)
	m.hits[key] = kept
	return Decision{Allowed: true, Remaining: m.policy.Limit - len(kept)}, nil
}

// Sweep drops keys whose log has fully aged out.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, hits := range m.hits {
		if len(prune(hits, now, m.policy.Window)) == 0 {
			delete(m.hits, key)
			removed++
		}
	}
	return removed
}

// Keys returns the number of tracked identities.
func (m *Memory) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

// RunJanitor sweeps every interval until ctx is done.
func (m *Memory) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// prune keeps hits younger than window. hits is ordered oldest first.
func prune(hits []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= window {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}

// Package idempotency remembers which submission keys already produced a
// result so a retried request can be answered without repeating side effects.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store maps a caller-supplied key to the result of its first success.
type Store interface {
	// Lookup returns the remembered value for key, if any.
	Lookup(ctx context.Context, key string) (string, bool, error)
	// Remember stores value for key unless the key is already present.
	Remember(ctx context.Context, key, value string) error
}

type entry struct {
	value   string
	expires time.Time
}

// Memory is a process-local Store with expiry.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates a process-local store.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Lookup implements Store.
func (m *Memory) Lookup(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Remember implements Store.
func (m *Memory) Remember(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expires) {
		return nil
	}
	m.entries[key] = entry{value: value, expires: now.Add(m.ttl)}
	return nil
}

// Redis is a Store shared across replicas.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed store.
func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Lookup implements Store.
func (r *Redis) Lookup(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency: lookup %q: %w", key, err)
	}
	return val, true, nil
}

// Remember implements Store.
func (r *Redis) Remember(ctx context.Context, key, value string) error {
	if err := r.client.SetNX(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: remember %q: %w", key, err)
	}
	return nil
}

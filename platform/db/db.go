// Package db provides the Redis connection shared by the rate limiter, the
// idempotency store and readiness checks.
// This is part of the platform layer and contains no business logic.
package db

import (
	"context"
	"crypto/tls"
	"time"

	"naql_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to REDIS_URL and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 2 * time.Second
	opt.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// ClientAdapter exposes a Redis client as a health checker.
type ClientAdapter struct {
	client redis.UniversalClient
}

// NewClientAdapter wraps client.
func NewClientAdapter(client redis.UniversalClient) *ClientAdapter {
	return &ClientAdapter{client: client}
}

// Ping checks that Redis answers.
func (a *ClientAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

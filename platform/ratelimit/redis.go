package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript prunes, counts and records in one atomic step.
// KEYS[1] log key; ARGV now(ms), window(ms), limit, member.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local retry = window
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, 0, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, limit - count - 1, 0}
`)

// Redis is a sliding-window log shared by every replica through a sorted set
// per key.
type Redis struct {
	client redis.Scripter
	prefix string
	policy Policy
	now    func() time.Time
}

var _ Limiter = (*Redis)(nil)

// NewRedis creates a Redis-backed limiter. prefix namespaces the keys.
func NewRedis(client redis.Scripter, prefix string, policy Policy) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		policy: policy.normalized(),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (r *Redis) WithClock(now func() time.Time) *Redis {
	r.now = now
	return r
}

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, r.client,
		[]string{r.prefix + key},
		now, r.policy.Window.Milliseconds(), r.policy.Limit, member,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis check for %q: %w", key, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}

	return Decision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

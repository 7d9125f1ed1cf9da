package ratelimitpkg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "pet-ledger:ratelimit"

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// Redis is a fixed window limiter shared by all application instances.
type Redis struct {
	client   redis.UniversalClient
	prefix   string
	requests int
	period   time.Duration
}

// NewRedis returns a Redis limiter allowing requests per period for each key.
func NewRedis(client redis.UniversalClient, prefix string, requests int, period time.Duration) *Redis {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &Redis{
		client:   client,
		prefix:   prefix,
		requests: requests,
		period:   period,
	}
}

// Allow counts the request in the current window of key.
func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	windowMs := r.period.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}

	raw, err := fixedWindowScript.Run(ctx, r.client, []string{r.prefix + ":" + key}, windowMs).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis rate limit script: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Result{}, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}

	count, ok := values[0].(int64)
	if !ok {
		return Result{}, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}

	ttlMs, ok := values[1].(int64)
	if !ok {
		return Result{}, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}

	if int(count) > r.requests {
		return Result{Allowed: false, RetryAfter: time.Duration(ttlMs) * time.Millisecond}, nil
	}

	return Result{Allowed: true, Remaining: r.requests - int(count)}, nil
}

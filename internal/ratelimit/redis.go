package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter implements a fixed-window rate limiter backed by Redis. The
// window TTL starts on the first attempt for a key, matching the in-memory
// limiter's reset semantics.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
		limit:  limit,
		window: window,
	}
}

// Allow checks whether another attempt is allowed for the key in the current
// window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, now time.Time) (Result, error) {
	if key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	redisKey := l.buildKey(key)
	res, errEval := redisIncrScript.Run(ctx, l.client, []string{redisKey}, l.window.Milliseconds()).Result()
	if errEval != nil {
		return Result{}, errEval
	}
	count, ok := res.(int64)
	if !ok {
		return Result{}, errors.New("rate limit redis: unexpected response type")
	}

	reset := now.Add(l.window)
	if ttl, errTTL := l.client.PTTL(ctx, redisKey).Result(); errTTL == nil && ttl > 0 {
		reset = now.Add(ttl)
	}

	if count > int64(l.limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

func (l *RedisLimiter) buildKey(key string) string {
	if l.prefix == "" {
		return "login:" + key
	}
	return l.prefix + ":login:" + key
}

package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// RedisOptions configures the optional Redis backend. An empty Addr disables
// it and the in-memory limiter is used alone.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Manager enforces login rate limits, preferring Redis when configured and
// falling back to the in-memory limiter whenever Redis misbehaves.
type Manager struct {
	nowFn  func() time.Time
	memory *MemoryLimiter

	mu           sync.Mutex
	redisLimiter *RedisLimiter
	breakerUntil time.Time
}

// NewManager constructs a Manager. nowFn defaults to time.Now.
func NewManager(opts RedisOptions, nowFn func() time.Time) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	m := &Manager{
		nowFn:  nowFn,
		memory: NewMemoryLimiter(DefaultLimit, DefaultWindow),
	}
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(opts.Password),
			DB:       opts.DB,
		})
		m.redisLimiter = NewRedisLimiter(client, opts.Prefix, DefaultLimit, DefaultWindow)
	}
	return m
}

// Allow checks whether another login attempt is allowed for the address.
func (m *Manager) Allow(ctx context.Context, address string) Result {
	if m == nil || address == "" {
		return Result{Allowed: true}
	}
	now := m.nowFn()
	if limiter := m.currentRedis(now); limiter != nil {
		result, errAllow := limiter.Allow(ctx, address, now)
		if errAllow == nil {
			return result
		}
		m.tripBreaker(errAllow, now)
	}
	result, _ := m.memory.Allow(ctx, address, now)
	return result
}

// StartSweeper launches the hourly sweep of in-memory counters.
func (m *Manager) StartSweeper(ctx context.Context) {
	m.memory.StartSweeper(ctx, DefaultSweepInterval)
}

func (m *Manager) currentRedis(now time.Time) *RedisLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisLimiter == nil {
		return nil
	}
	if !m.breakerUntil.IsZero() {
		if now.Before(m.breakerUntil) {
			return nil
		}
		m.breakerUntil = time.Time{}
	}
	return m.redisLimiter
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("rate limit: redis unavailable, falling back to memory")
}

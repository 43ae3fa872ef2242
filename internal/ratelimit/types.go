package ratelimit

import (
	"context"
	"time"
)

// Login attempt limits: 5 tries per client address per 15-minute window,
// with an hourly sweep of stale in-memory counters.
const (
	DefaultLimit         = 5
	DefaultWindow        = 15 * time.Minute
	DefaultSweepInterval = time.Hour
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks keyed by client address.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (Result, error)
}

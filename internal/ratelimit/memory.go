package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count int
	reset time.Time
}

// MemoryLimiter implements a fixed-window in-memory rate limiter. The window
// opens on the first attempt for an address and closes at its reset deadline;
// counters are ephemeral and lost on restart.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	counters map[string]*memoryEntry
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryLimiter{
		limit:    limit,
		window:   window,
		counters: make(map[string]*memoryEntry),
	}
}

// Allow checks whether another attempt is allowed for the key in the current
// window.
func (l *MemoryLimiter) Allow(_ context.Context, key string, now time.Time) (Result, error) {
	if key == "" {
		return Result{Allowed: true}, nil
	}

	l.mu.Lock()
	entry := l.counters[key]
	if entry == nil || now.After(entry.reset) {
		entry = &memoryEntry{count: 1, reset: now.Add(l.window)}
		l.counters[key] = entry
		reset := entry.reset
		l.mu.Unlock()
		return Result{Allowed: true, Remaining: l.limit - 1, Reset: reset}, nil
	}
	if entry.count >= l.limit {
		reset := entry.reset
		l.mu.Unlock()
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	remaining := l.limit - entry.count
	reset := entry.reset
	l.mu.Unlock()
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

// Sweep drops counters whose reset deadline has passed, bounding memory.
func (l *MemoryLimiter) Sweep(now time.Time) {
	l.mu.Lock()
	for key, entry := range l.counters {
		if now.After(entry.reset) {
			delete(l.counters, key)
		}
	}
	l.mu.Unlock()
}

// StartSweeper runs Sweep on the interval until the context is done.
func (l *MemoryLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.Sweep(now)
			}
		}
	}()
}

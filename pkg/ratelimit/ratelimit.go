// Package ratelimit bounds how often an identity may invoke spotlight
// search. Both backends implement a fixed window: the first call in a window
// starts it, and calls beyond the budget are rejected until the window
// expires.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config defines rate limiting configuration.
type Config struct {
	// RequestsPerWindow is the max invocations allowed per window.
	RequestsPerWindow int
	// WindowDuration is the length of the fixed window.
	WindowDuration time.Duration
}

// DefaultConfig returns the spotlight search budget: 100 invocations per
// 100 seconds per identity.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerWindow: 100,
		WindowDuration:    100 * time.Second,
	}
}

// Limiter is implemented by both the in-memory and Redis-backed limiters.
type Limiter interface {
	// Allow reports whether the identity may proceed. Implementations that
	// depend on external services fail open and return the error alongside.
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	start time.Time
	count int
}

// FixedWindowLimiter is an in-memory per-key fixed window limiter. Counter
// access is serialized, so concurrent invocations from the same identity
// are accounted atomically.
type FixedWindowLimiter struct {
	config  *Config
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewFixedWindowLimiter creates an in-memory fixed window limiter.
func NewFixedWindowLimiter(config *Config) *FixedWindowLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &FixedWindowLimiter{
		config:  config,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow reports whether a request is allowed for the given key.
func (rl *FixedWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.config.WindowDuration {
		w = &window{start: now}
		rl.windows[key] = w
	}

	w.count++
	return w.count <= rl.config.RequestsPerWindow, nil
}

// Remaining returns the number of invocations left in the current window.
func (rl *FixedWindowLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || rl.now().Sub(w.start) >= rl.config.WindowDuration {
		return rl.config.RequestsPerWindow
	}

	remaining := rl.config.RequestsPerWindow - w.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Cleanup removes expired windows. Call it periodically; expired entries
// are otherwise only replaced when their key is seen again.
func (rl *FixedWindowLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.config.WindowDuration {
			delete(rl.windows, key)
		}
	}
}

// StartCleanup runs Cleanup on a ticker until the context is canceled.
func (rl *FixedWindowLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.config.WindowDuration)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

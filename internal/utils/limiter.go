// Package utils provides utility functions used throughout the application.
package utils

import (
	"context"
	"sync"
	"time"
)

// LimitResult is the outcome of a rate limit check.
type LimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// RateLimiter provides a sliding-window in-memory rate limiter.
// It is used when no Redis instance is configured.
type RateLimiter struct {
	// requests maps keys to the timestamps of requests inside the window
	requests map[string][]time.Time

	window time.Duration
	limit  int
	now    func() time.Time

	mu sync.Mutex
}

// NewRateLimiter creates a new rate limiter with the specified window and limit.
func NewRateLimiter(window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
		now:      time.Now,
	}
}

// Check records a request for key when it fits in the window.
func (rl *RateLimiter) Check(_ context.Context, key string) (LimitResult, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	result := LimitResult{Limit: rl.limit, ResetAfter: rl.window}
	if len(valid) > 0 {
		result.ResetAfter = valid[0].Add(rl.window).Sub(now)
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return result, nil
	}

	valid = append(valid, now)
	rl.requests[key] = valid
	result.Allowed = true
	result.Remaining = rl.limit - len(valid)
	return result, nil
}

// CleanupLoop periodically drops keys with no requests inside the window.
// It should be started in a goroutine.
func (rl *RateLimiter) CleanupLoop(ctx context.Context, cleanupInterval time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, times := range rl.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

package tools

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Default per-tool limits. Each tool gets its own bucket.
const (
	DefaultToolRPS   = 10
	DefaultToolBurst = 20
)

// RateLimiter provides per-tool rate limiting
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter. A non-positive r disables limiting.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	if b <= 0 {
		b = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    b,
	}
}

// Allow reports whether a call to tool may proceed now
func (rl *RateLimiter) Allow(tool string) bool {
	if rl == nil || rl.rate <= 0 {
		return true
	}
	return rl.limiter(tool).Allow()
}

func (rl *RateLimiter) limiter(tool string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, exists := rl.limiters[tool]
	if !exists {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[tool] = l
	}
	return l
}

// String describes the configured limit
func (rl *RateLimiter) String() string {
	if rl == nil || rl.rate <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%.2f/s burst %d", float64(rl.rate), rl.burst)
}

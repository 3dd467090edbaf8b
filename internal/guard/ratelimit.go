package guard

import (
	"sync"
	"time"

	"github.com/chymezy/decentra-client/internal/apperror"
)

// DefaultRateLimitWindow is the minimum spacing between two invocations
// of the same mutating operation.
const DefaultRateLimitWindow = time.Second

// RateLimiter throttles mutating operations per operation name. Each
// client instance owns its own limiter; nothing here is shared across
// instances, so two clients in one process never throttle each other.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

// NewRateLimiter returns a limiter enforcing the given window between
// calls of the same operation. A non-positive window falls back to
// DefaultRateLimitWindow.
func NewRateLimiter(window time.Duration) *RateLimiter {
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Check records one invocation of op. It fails with a rate-limit error
// if the previous invocation of the same op was less than the window ago;
// a failed check does not refresh the timestamp, so a burst of rejected
// calls cannot extend the lockout.
func (rl *RateLimiter) Check(op string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if last, ok := rl.last[op]; ok {
		if elapsed := now.Sub(last); elapsed < rl.window {
			return apperror.RateLimited(op, rl.window-elapsed)
		}
	}
	rl.last[op] = now
	return nil
}

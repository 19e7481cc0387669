package transport

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/dogsync/pkg/constants"
)

// RateLimiter admits at most Limit requests in any sliding Window.
type RateLimiter struct {
	limit  int
	window time.Duration
	poll   time.Duration
	now    func() time.Time

	mu      sync.Mutex
	history []time.Time
}

// NewRateLimiter returns a limiter admitting limit requests per second.
// A limit of zero or less disables limiting.
func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: time.Second,
		poll:   constants.RateLimitPollInterval,
		now:    time.Now,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil || l.limit <= 0 {
		return ctx.Err()
	}
	for {
		if l.tryAcquire() {
			return nil
		}
		t := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (l *RateLimiter) tryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.history) && !l.history[i].After(cutoff) {
		i++
	}
	l.history = l.history[i:]

	if len(l.history) >= l.limit {
		return false
	}
	l.history = append(l.history, now)
	return true
}

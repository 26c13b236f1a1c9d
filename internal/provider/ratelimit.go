package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyQuotaExceeded is returned once the provider's daily call
// allowance is spent. Callers should back off until the window rolls.
var ErrDailyQuotaExceeded = errors.New("provider daily quota exceeded")

// quotaWindow is anchored to the limiter's construction, not midnight.
// The stock provider meters accounts on a rolling day.
const quotaWindow = 24 * time.Hour

// RateLimiter throttles outbound provider calls on two axes: a token
// bucket for burst control and a rolling daily quota matching the
// provider's per-account allowance.
type RateLimiter struct {
	bucket *rate.Limiter

	mu      sync.Mutex
	used    int64
	quota   int64
	rollsAt time.Time
	nowFunc func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the clock, for tests.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter builds a limiter allowing perSecond sustained calls
// with the given burst, capped at quota calls per rolling 24-hour
// window.
func NewRateLimiter(perSecond float64, burst int, quota int64, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		bucket:  rate.NewLimiter(rate.Limit(perSecond), burst),
		quota:   quota,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.rollsAt = r.nowFunc().Add(quotaWindow)
	return r
}

// Wait blocks until the token bucket admits the call or ctx is done.
// One quota unit is consumed per admitted call; once the quota is
// spent, Wait returns ErrDailyQuotaExceeded without blocking.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if !r.spend() {
		return fmt.Errorf("%w (%d calls in window)", ErrDailyQuotaExceeded, r.DailyCount())
	}
	if err := r.bucket.Wait(ctx); err != nil {
		r.refund()
		return fmt.Errorf("waiting for provider rate limit: %w", err)
	}
	return nil
}

// spend rolls the window if it has lapsed, then takes one quota unit.
func (r *RateLimiter) spend() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now := r.nowFunc(); now.After(r.rollsAt) {
		r.used = 0
		r.rollsAt = now.Add(quotaWindow)
	}
	if r.used >= r.quota {
		return false
	}
	r.used++
	return true
}

// refund returns a unit taken by spend when the admitted call never
// went out.
func (r *RateLimiter) refund() {
	r.mu.Lock()
	r.used--
	r.mu.Unlock()
}

// DailyCount reports calls spent in the current quota window.
func (r *RateLimiter) DailyCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used
}

// Remaining reports quota left before Wait starts rejecting.
func (r *RateLimiter) Remaining() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if left := r.quota - r.used; left > 0 {
		return left
	}
	return 0
}

// ResetAt reports when the current quota window rolls over.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rollsAt
}

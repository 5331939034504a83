package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket. A nil *Limiter never blocks.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter returns a limiter refilling perSecond tokens up to burst. A
// non-positive rate means no limit and yields nil.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow reports whether n tokens are available now and consumes them if so.
func (l *Limiter) Allow(n int) bool {
	if l == nil {
		return true
	}
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done. Requests above
// the burst size are clamped to it.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return ctx.Err()
	}
	if burst := l.inner.Burst(); n > burst {
		n = burst
	}
	return l.inner.WaitN(ctx, n)
}

// SetRate changes the refill rate, keeping tokens already accumulated.
func (l *Limiter) SetRate(perSecond float64) {
	if l == nil || perSecond <= 0 {
		return
	}
	l.inner.SetLimit(rate.Limit(perSecond))
}

// SetBurst changes the bucket size.
func (l *Limiter) SetBurst(burst int) {
	if l == nil || burst < 1 {
		return
	}
	l.inner.SetBurst(burst)
}

// Burst returns the bucket size, or 0 for a nil limiter.
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.inner.Burst()
}

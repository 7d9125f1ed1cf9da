// Package ratelimitpkg limits the number of requests a client can make in a period.
package ratelimitpkg

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the request identified by key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Local is an in-process token bucket limiter, one bucket per key.
//
// It refills requests tokens every period and allows bursts of up to requests.
type Local struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	period    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewLocal returns a Local limiter allowing requests per period for each key.
func NewLocal(requests int, period time.Duration) *Local {
	return &Local{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(period / time.Duration(requests)),
		burst:    requests,
		period:   period,
		now:      time.Now,
	}
}

// Allow consumes one token from the key bucket.
func (l *Local) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}

	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, RetryAfter: delay}, nil
	}

	return Result{Allowed: true, Remaining: int(v.limiter.TokensAt(now))}, nil
}

// sweep drops buckets idle for longer than a period, they are full again anyway.
func (l *Local) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.period {
		return
	}

	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.period {
			delete(l.visitors, key)
		}
	}

	l.lastSweep = now
}

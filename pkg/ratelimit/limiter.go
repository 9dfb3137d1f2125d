// Package ratelimit provides per-client token-bucket rate limiting for the
// omnisend API.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default limiter values.
const (
	DefaultCleanupInterval = 1 * time.Minute
	DefaultEntryTTL        = 1 * time.Minute
)

// Config configures a Limiter.
type Config struct {
	Rate            float64       // tokens per second
	Burst           int           // maximum bucket capacity
	EntryTTL        time.Duration // how long an idle client is remembered
	CleanupInterval time.Duration // minimum time between sweeps of idle clients
}

// Decision is the result of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int

	// Reset is the number of seconds until the bucket is full again, or,
	// when the request was refused, until one token is available.
	Reset int64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per client key. Idle clients are swept
// during Allow, so a Limiter needs no goroutine and no Stop.
type Limiter struct {
	rate            float64
	burst           int
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// New creates a Limiter. A zero Burst defaults to twice the rate, at least 1.
func New(cfg Config) *Limiter {
	r := cfg.Rate
	if r <= 0 {
		r = 100
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(int(math.Ceil(r*2)), 1)
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = DefaultEntryTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	return &Limiter{
		rate:            r,
		burst:           burst,
		entryTTL:        cfg.EntryTTL,
		cleanupInterval: cfg.CleanupInterval,
		now:             time.Now,
		buckets:         make(map[string]*bucket),
	}
}

// Burst returns the bucket capacity.
func (l *Limiter) Burst() int {
	return l.burst
}

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()
	b := l.bucket(key, now)

	d := Decision{Limit: l.burst}
	if b.limiter.AllowN(now, 1) {
		tokens := b.limiter.TokensAt(now)
		d.Allowed = true
		d.Remaining = max(int(tokens), 0)
		d.Reset = l.secondsFor(float64(l.burst) - tokens)
		return d
	}

	r := b.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	d.Reset = max(int64(math.Ceil(delay.Seconds())), 1)
	return d
}

// bucket returns key's bucket, sweeping idle keys when due.
func (l *Limiter) bucket(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cleanupInterval {
		l.sweep(now)
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.rate), l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

func (l *Limiter) secondsFor(tokens float64) int64 {
	if tokens <= 0 {
		return 0
	}
	return int64(math.Ceil(tokens / l.rate))
}

// sweep drops clients idle for longer than entryTTL. Caller must hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.entryTTL)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

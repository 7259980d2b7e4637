package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/utils"
)

type RateLimitConfig struct {
	Burst        int
	RefillPerMin int
	MaxEntries   int              // sweep idle buckets once this many clients are tracked
	TrustProxy   bool             // resolve IP from proxy headers when true
	Now          func() time.Time // defaults to time.Now
}

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. A bucket idle long enough to be full again
// is indistinguishable from a new one, so sweeping it never changes a decision.
type Limiter struct {
	cfg      RateLimitConfig
	rate     float64 // tokens per second
	capacity float64
	fullIn   time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewLimiter(cfg RateLimitConfig) *Limiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerMin < 1 {
		cfg.RefillPerMin = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	rate := float64(cfg.RefillPerMin) / 60.0
	return &Limiter{
		cfg:       cfg,
		rate:      rate,
		capacity:  float64(cfg.Burst),
		fullIn:    time.Duration(float64(cfg.Burst) / rate * float64(time.Second)),
		buckets:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// Take consumes one token for key.
func (l *Limiter) Take(key string) Decision {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.fullIn || (l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries) {
		l.sweepLocked(now)
	}

	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true, Remaining: int(b.tokens)}
	}
	wait := math.Max(1, math.Ceil((1-b.tokens)/l.rate))
	return Decision{RetryAfter: time.Duration(wait) * time.Second}
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) >= l.fullIn {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit limits requests per client IP. Rejected requests get 429 with
// Retry-After and a JSON error body.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := NewLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Take(utils.ClientIP(r, l.cfg.TrustProxy))

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter/time.Second)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

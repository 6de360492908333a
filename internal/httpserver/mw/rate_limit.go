package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/utils"
)

type RateLimitConfig struct {
	Burst             int // bucket capacity
	RefillPerIPPerMin int
	MaxEntries        int // sweep early once this many clients are tracked
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool // resolve the client IP from proxy headers
	Now               func() time.Time
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type tokens struct {
	level   float64
	updated time.Time
}

// buckets holds one token bucket per client key behind a single lock.
type buckets struct {
	cfg       RateLimitConfig
	perSecond float64

	mu        sync.Mutex
	byKey     map[string]*tokens
	lastSweep time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	cfg = cfg.withDefaults()
	return &buckets{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerIPPerMin) / 60,
		byKey:     make(map[string]*tokens),
		lastSweep: cfg.Now(),
	}
}

// take spends one token for key. On refusal it reports how many whole
// seconds until a token is available.
func (b *buckets) take(key string, now time.Time) (ok bool, left int, wait int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	full := now.Sub(b.lastSweep) >= b.cfg.SweepInterval
	crowded := b.cfg.MaxEntries > 0 && len(b.byKey) >= b.cfg.MaxEntries
	if full || crowded {
		b.sweep(now)
	}

	t, found := b.byKey[key]
	if !found {
		t = &tokens{level: float64(b.cfg.Burst), updated: now}
		b.byKey[key] = t
	}
	if dt := now.Sub(t.updated).Seconds(); dt > 0 {
		t.level = math.Min(float64(b.cfg.Burst), t.level+dt*b.perSecond)
	}
	t.updated = now

	if t.level < 1 {
		return false, 0, max(int(math.Ceil((1-t.level)/b.perSecond)), 1)
	}
	t.level--
	return true, int(t.level), 0
}

func (b *buckets) sweep(now time.Time) {
	for key, t := range b.byKey {
		if now.Sub(t.updated) > b.cfg.IdleTTL {
			delete(b.byKey, key)
		}
	}
	b.lastSweep = now
}

// RateLimit is a per-client token bucket. Rejections are JSON 429s with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	b := newBuckets(cfg)
	limit := strconv.Itoa(b.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, left, wait := b.take(utils.ClientIP(r, b.cfg.TrustProxy), b.cfg.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(left))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(wait))
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	loginWindow = time.Minute
	// An idle limiter has refilled completely after one window; keep a
	// few more before dropping it.
	localIdleTTL = 5 * loginWindow
)

// LoginRateLimit limits login attempts per mobile number (or client IP when
// the body carries none). Redis keeps the counters when available; otherwise
// a per-process token bucket is used. Redis errors fail open.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	local := newLocalLimiter(maxPerMin)
	return func(c *fiber.Ctx) error {
		key := loginKey(c)
		if cache == nil {
			if !local.allow(key) {
				return tooManyAttempts()
			}
			return c.Next()
		}

		ctx := c.UserContext()
		redisKey := "rl:login:" + key
		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		if _, err := cache.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, redisKey)
			ttl = pipe.TTL(ctx, redisKey)
			return nil
		}); err != nil {
			return c.Next()
		}
		// A counter without expiry would lock the number out for good, so
		// any counter missing one gets it here, not only a fresh one.
		if ttl.Val() < 0 {
			if err := cache.Expire(ctx, redisKey, loginWindow).Err(); err != nil {
				return c.Next()
			}
		}
		if incr.Val() > int64(maxPerMin) {
			return tooManyAttempts()
		}
		return c.Next()
	}
}

func tooManyAttempts() error {
	return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
}

func loginKey(c *fiber.Ctx) string {
	var req struct {
		Mobile string `json:"mobile"`
	}
	// Parse the raw body so the handler can still bind it afterwards.
	_ = json.Unmarshal(c.Body(), &req)
	if mobile := strings.TrimSpace(req.Mobile); mobile != "" {
		return mobile
	}
	return c.IP()
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localLimiter struct {
	mu      sync.Mutex
	perMin  int
	entries map[string]*localEntry
	now     func() time.Time
}

func newLocalLimiter(perMin int) *localLimiter {
	return &localLimiter{perMin: perMin, entries: make(map[string]*localEntry), now: time.Now}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok {
		l.evictIdleLocked(now)
		entry = &localEntry{limiter: rate.NewLimiter(rate.Every(loginWindow/time.Duration(l.perMin)), l.perMin)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *localLimiter) evictIdleLocked(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > localIdleTTL {
			delete(l.entries, key)
		}
	}
}

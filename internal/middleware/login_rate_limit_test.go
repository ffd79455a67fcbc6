package middleware

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func loginStatus(t *testing.T, app *fiber.App, mobile string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"mobile":"`+mobile+`","mpin":"1234"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func newLoginApp(cache *redis.Client) *fiber.App {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, 2), func(c *fiber.Ctx) error {
		var req struct {
			Mobile string `json:"mobile"`
		}
		if err := c.BodyParser(&req); err != nil || req.Mobile == "" {
			return fiber.NewError(fiber.StatusBadRequest, "body lost")
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestLoginRateLimitWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := newLoginApp(cache)
	for i := 0; i < 2; i++ {
		if status := loginStatus(t, app, "9999999999"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := loginStatus(t, app, "9999999999"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if status := loginStatus(t, app, "8888888888"); status != fiber.StatusOK {
		t.Fatalf("other mobiles must not be limited, got %d", status)
	}
	if ttl := mr.TTL("rl:login:9999999999"); ttl <= 0 {
		t.Fatalf("expected counter expiry, got %s", ttl)
	}
}

func TestLoginRateLimitWithoutRedis(t *testing.T) {
	app := newLoginApp(nil)
	for i := 0; i < 2; i++ {
		if status := loginStatus(t, app, "9999999999"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := loginStatus(t, app, "9999999999"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
}

func TestLoginRateLimitRepairsCounterWithoutExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	// A counter left behind by an earlier failed EXPIRE.
	if err := mr.Set("rl:login:9999999999", "10"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	app := newLoginApp(cache)
	if status := loginStatus(t, app, "9999999999"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if ttl := mr.TTL("rl:login:9999999999"); ttl <= 0 {
		t.Fatalf("expected the stale counter to get an expiry, got %s", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if status := loginStatus(t, app, "9999999999"); status != fiber.StatusOK {
		t.Fatalf("expected the lockout to lift, got %d", status)
	}
}

func TestLocalLimiterEvictsIdleEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLocalLimiter(2)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		l.allow(fmt.Sprintf("90000000%02d", i))
	}
	if len(l.entries) != 100 {
		t.Fatalf("expected 100 tracked numbers, got %d", len(l.entries))
	}

	now = now.Add(localIdleTTL + time.Second)
	if !l.allow("8888888888") {
		t.Fatal("fresh number must be allowed")
	}
	if len(l.entries) != 1 {
		t.Fatalf("idle numbers must be evicted, %d left", len(l.entries))
	}
}

func TestLocalLimiterKeepsActiveEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLocalLimiter(2)
	l.now = func() time.Time { return now }

	l.allow("9999999999")
	l.allow("9999999999")
	now = now.Add(time.Second)
	l.allow("8888888888")
	if l.allow("9999999999") {
		t.Fatal("an active number must keep its spent budget")
	}
}

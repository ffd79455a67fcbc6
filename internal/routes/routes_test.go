package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/verinova/onboarding/internal/config"
	"github.com/verinova/onboarding/internal/logging"
)

func devDeps() Deps {
	return Deps{
		Cfg: config.Config{
			AppEnv:         "development",
			PublicURL:      "http://localhost:4000",
			UploadSecret:   "secret",
			UploadURLTTL:   time.Minute,
			LoginRateLimit: 5,
		},
		Logger: logging.Discard(),
	}
}

func TestSetupRequiresDatabaseOutsideDev(t *testing.T) {
	d := devDeps()
	d.Cfg.AppEnv = "production"
	if err := Setup(fiber.New(), d); err == nil {
		t.Fatal("expected production setup without a database to fail")
	}
}

func TestHealthAndPing(t *testing.T) {
	app := fiber.New()
	if err := Setup(app, devDeps()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}
	var health struct {
		Status map[string]string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status["postgres"] != "disabled" || health.Status["redis"] != "disabled" {
		t.Fatalf("unexpected health %+v", health.Status)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var ping map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&ping); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ping["request_id"] != "req-1" || resp.Header.Get("X-Request-ID") != "req-1" {
		t.Fatalf("request id not propagated: %+v", ping)
	}
}

func TestSignupRouteWithoutRedisSkipsIdempotency(t *testing.T) {
	app := fiber.New()
	if err := Setup(app, devDeps()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	req := httptest.NewRequest(fiber.MethodPost, "/signup", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), "mobile") {
		t.Fatalf("expected handler validation error, got %d %s", resp.StatusCode, body)
	}
}

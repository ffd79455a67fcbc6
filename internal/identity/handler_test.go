package identity

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/verinova/onboarding/internal/profile"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	h := NewHandler(NewService(NewMemoryRepository(), nil, nil), nil)
	app := fiber.New()
	app.Post("/signup", h.Signup)
	app.Post("/login", h.Login)
	return app
}

func post(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestSignupThenLogin(t *testing.T) {
	app := setupApp(t)
	p := profile.UserProfile{Mobile: "9999999999", Name: "Alice", DOB: "1990-01-01", MPIN: "1234"}

	resp := post(t, app, "/signup", p)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d", resp.StatusCode)
	}

	resp = post(t, app, "/signup", p)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", resp.StatusCode)
	}

	resp = post(t, app, "/login", loginRequest{Mobile: "9999999999", MPIN: "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if body.User != p {
		t.Fatalf("expected %+v, got %+v", p, body.User)
	}
}

func TestLoginWrongMPINIsUnauthorized(t *testing.T) {
	app := setupApp(t)
	post(t, app, "/signup", profile.UserProfile{Mobile: "9999999999", MPIN: "1234"})

	resp := post(t, app, "/login", loginRequest{Mobile: "9999999999", MPIN: "0000"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSignupRejectsBadMPIN(t *testing.T) {
	app := setupApp(t)
	resp := post(t, app, "/signup", profile.UserProfile{Mobile: "9999999999", MPIN: "12"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verinova/onboarding/internal/logging"
	"github.com/verinova/onboarding/internal/profile"
)

const (
	// DefaultTimeout bounds every outbound call when no other timeout is set.
	DefaultTimeout = 15 * time.Second

	idempotencyKeyHeader = "Idempotency-Key"
	maxBodyBytes         = 1 << 20
)

// Client talks to the remote auth API. Calls carry no credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute http(s), got %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Mobile string `json:"mobile"`
	MPIN   string `json:"mpin"`
}

type loginResponse struct {
	User json.RawMessage `json:"user"`
}

// Signup posts the full profile to /signup. Only HTTP 200 counts as success;
// the response body is ignored. Passing the same idempotencyKey on a retry lets
// the server replay its first answer; an empty key gets a fresh one.
func (c *Client) Signup(ctx context.Context, p profile.UserProfile, idempotencyKey string) error {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	headers := map[string]string{idempotencyKeyHeader: idempotencyKey}
	status, body, err := c.postJSON(ctx, "/signup", p, headers)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	if status != http.StatusOK {
		return &StatusError{Op: "signup", Code: status, Message: summarize(body)}
	}
	return nil
}

// Login posts the credentials to /login and returns the user object of a 200
// response as a patch, so fields the server omits stay untouched locally.
func (c *Client) Login(ctx context.Context, mobile, mpin string) (profile.Patch, error) {
	status, body, err := c.postJSON(ctx, "/login", loginRequest{Mobile: mobile, MPIN: mpin}, nil)
	if err != nil {
		return profile.Patch{}, fmt.Errorf("login: %w", err)
	}
	if status != http.StatusOK {
		return profile.Patch{}, &StatusError{Op: "login", Code: status, Message: summarize(body)}
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return profile.Patch{}, &ProtocolError{Op: "login", Reason: "decode response", Err: err}
	}
	raw := bytes.TrimSpace(resp.User)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || raw[0] != '{' {
		return profile.Patch{}, &ProtocolError{Op: "login", Reason: "response has no user object"}
	}

	var patch profile.Patch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return profile.Patch{}, &ProtocolError{Op: "login", Reason: "decode user", Err: err}
	}
	return patch, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, headers map[string]string) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+path, "application/json", bytes.NewReader(data), headers)
}

func (c *Client) do(ctx context.Context, method, target, contentType string, body io.Reader, headers map[string]string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("auth api call failed",
			slog.String("method", method),
			slog.String("url", redact(target)),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("auth api call",
		slog.String("method", method),
		slog.String("url", redact(target)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, payload, nil
}

// summarize trims a server error body to something fit for an error message.
func summarize(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// redact drops the query string, which carries upload tokens.
func redact(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}

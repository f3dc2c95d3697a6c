// Package client talks to the vtrackd REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// ErrMalformed is returned when a response body cannot be decoded or lacks
// a required field.
var ErrMalformed = errors.New("malformed response")

// APIError is a negative acknowledgement from the server: either
// success:false or an HTTP failure status.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Path, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// UserMessage returns the server-provided text, if any.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Client wraps HTTP calls to the daemon's REST API.
type Client struct {
	baseURL string
	hc      *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the API rooted at baseURL. Callers bound each
// request through its context.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.String("request_id", resp.Header.Get("X-Request-ID")),
	)

	if resp.StatusCode/100 != 2 {
		var env wire.Envelope
		_ = json.Unmarshal(raw, &env)
		return &APIError{Path: path, Status: resp.StatusCode, Message: env.Message}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func nack(path string, env wire.Envelope) error {
	if env.Success {
		return nil
	}
	return &APIError{Path: path, Status: http.StatusOK, Message: env.Message}
}

// Suggest returns autocomplete candidates in server order.
func (c *Client) Suggest(ctx context.Context, req wire.SearchRequest) ([]string, error) {
	const path = "/api/search/suggestions"
	var resp wire.SuggestionsResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	if err := nack(path, resp.Envelope); err != nil {
		return nil, err
	}
	if resp.Suggestions == nil {
		return nil, fmt.Errorf("%w: %s: missing suggestions", ErrMalformed, path)
	}
	return resp.Suggestions, nil
}

// Search returns matching violations in server order.
func (c *Client) Search(ctx context.Context, req wire.SearchRequest) ([]wire.Violation, error) {
	const path = "/api/search"
	var resp wire.ViolationsResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	if err := nack(path, resp.Envelope); err != nil {
		return nil, err
	}
	if resp.Violations == nil {
		return nil, fmt.Errorf("%w: %s: missing violations", ErrMalformed, path)
	}
	return resp.Violations, nil
}

// Login verifies credentials and returns the guard's identity.
func (c *Client) Login(ctx context.Context, creds wire.Credentials) (*wire.User, error) {
	return c.userCall(ctx, "/api/login", creds)
}

// Register creates an account and returns the new identity.
func (c *Client) Register(ctx context.Context, reg wire.Registration) (*wire.User, error) {
	return c.userCall(ctx, "/api/register", reg)
}

func (c *Client) userCall(ctx context.Context, path string, body any) (*wire.User, error) {
	var resp wire.UserResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	if err := nack(path, resp.Envelope); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: %s: missing user", ErrMalformed, path)
	}
	return resp.User, nil
}

// ForgotPassword requests a reset token for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	const path = "/api/forgot-password"
	var resp wire.ForgotPasswordResponse
	if err := c.post(ctx, path, wire.ForgotPasswordRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	if err := nack(path, resp.Envelope); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Profile loads the profile of user id.
func (c *Client) Profile(ctx context.Context, id int64) (*wire.Profile, error) {
	const path = "/api/profile"
	var resp wire.ProfileResponse
	if err := c.post(ctx, path, wire.ProfileRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	if err := nack(path, resp.Envelope); err != nil {
		return nil, err
	}
	if resp.Profile == nil {
		return nil, fmt.Errorf("%w: %s: missing profile", ErrMalformed, path)
	}
	return resp.Profile, nil
}

// UpdateProfile saves profile changes.
func (c *Client) UpdateProfile(ctx context.Context, upd wire.ProfileUpdate) error {
	const path = "/api/profile/update"
	var resp wire.Envelope
	if err := c.post(ctx, path, upd, &resp); err != nil {
		return err
	}
	return nack(path, resp)
}

// SubmitViolation records a violation and returns its id.
func (c *Client) SubmitViolation(ctx context.Context, v wire.NewViolation) (int64, error) {
	const path = "/api/violations"
	var resp wire.SubmitViolationResponse
	if err := c.post(ctx, path, v, &resp); err != nil {
		return 0, err
	}
	if err := nack(path, resp.Envelope); err != nil {
		return 0, err
	}
	return resp.ViolationID, nil
}

// ListViolations returns the newest violations. limit <= 0 means all.
func (c *Client) ListViolations(ctx context.Context, limit int) ([]wire.Violation, error) {
	path := "/api/violations"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp wire.ViolationsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if err := nack(path, resp.Envelope); err != nil {
		return nil, err
	}
	if resp.Violations == nil {
		return nil, fmt.Errorf("%w: %s: missing violations", ErrMalformed, path)
	}
	return resp.Violations, nil
}

// RegisterStudent adds a student to the face registry.
func (c *Client) RegisterStudent(ctx context.Context, s wire.Student) error {
	const path = "/api/students"
	var resp wire.Envelope
	if err := c.post(ctx, path, s, &resp); err != nil {
		return err
	}
	return nack(path, resp)
}

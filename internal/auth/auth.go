// Package auth holds the logged-in guard for a client process and persists
// it across restarts.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schoolwatch/vtrack/internal/bus"
	"github.com/schoolwatch/vtrack/internal/tui/client"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

var (
	// ErrMissingFields is returned before any request when a required input is blank.
	ErrMissingFields = errors.New("all fields are required")
	// ErrPasswordMismatch is returned by Register when the confirmation differs.
	ErrPasswordMismatch = errors.New("passwords don't match")
	// ErrNotLoggedIn is returned by calls that need a user.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Change is the payload of bus.AuthChanged events. User is nil after logout.
type Change struct {
	User *wire.User
}

type persisted struct {
	BaseURL    string     `json:"base_url"`
	User       *wire.User `json:"user"`
	LoggedInAt time.Time  `json:"logged_in_at"`
}

// Context is the authentication collaborator shared by a client process.
// It is created once at startup and torn down at logout.
type Context struct {
	mu      sync.RWMutex
	user    *wire.User
	client  *client.Client
	path    string
	timeout time.Duration
	bus     *bus.Bus
	logger  *zap.Logger
}

// New creates a logged-out context. path is the auth.json location; timeout
// bounds each request when positive. b and logger may be nil.
func New(c *client.Client, path string, timeout time.Duration, b *bus.Bus, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{client: c, path: path, timeout: timeout, bus: b, logger: logger}
}

// Bootstrap restores a persisted session. A missing file leaves the context
// logged out; a session saved against another server is ignored.
func (a *Context) Bootstrap() error {
	data, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read auth: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode %s: %w", a.path, err)
	}
	if p.User == nil {
		return nil
	}
	if p.BaseURL != a.client.BaseURL() {
		a.logger.Info("ignoring session for other server",
			zap.String("saved", p.BaseURL), zap.String("current", a.client.BaseURL()))
		return nil
	}

	a.mu.Lock()
	a.user = p.User
	a.mu.Unlock()
	a.logger.Info("session restored", zap.Int64("user_id", p.User.ID))
	a.publish(p.User)
	return nil
}

// Login authenticates against the server and persists the session.
func (a *Context) Login(ctx context.Context, username, password string) (*wire.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	ctx, cancel := a.bound(ctx)
	defer cancel()

	u, err := a.client.Login(ctx, wire.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if err := a.setUser(u); err != nil {
		return nil, err
	}
	a.logger.Info("logged in", zap.Int64("user_id", u.ID))
	return u, nil
}

// Register creates an account and logs into it.
func (a *Context) Register(ctx context.Context, username, email, password, confirm string) (*wire.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	ctx, cancel := a.bound(ctx)
	defer cancel()

	u, err := a.client.Register(ctx, wire.Registration{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := a.setUser(u); err != nil {
		return nil, err
	}
	a.logger.Info("registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// ForgotPassword asks the server to issue a reset token for email.
func (a *Context) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrMissingFields
	}
	ctx, cancel := a.bound(ctx)
	defer cancel()
	return a.client.ForgotPassword(ctx, email)
}

// Logout forgets the user and deletes the persisted session.
func (a *Context) Logout() error {
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()

	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove auth: %w", err)
	}
	a.logger.Info("logged out")
	a.publish(nil)
	return nil
}

// User returns a copy of the current user, or nil.
func (a *Context) User() *wire.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// LoggedIn reports whether a user is set.
func (a *Context) LoggedIn() bool {
	return a.User() != nil
}

// BaseURL is the API root every request goes to.
func (a *Context) BaseURL() string {
	return a.client.BaseURL()
}

// Client returns the REST client bound to BaseURL.
func (a *Context) Client() *client.Client {
	return a.client
}

// Profile loads the logged-in user's profile.
func (a *Context) Profile(ctx context.Context) (*wire.Profile, error) {
	u := a.User()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	ctx, cancel := a.bound(ctx)
	defer cancel()
	return a.client.Profile(ctx, u.ID)
}

// UpdateProfile saves upd for the logged-in user. The ID field is filled in.
func (a *Context) UpdateProfile(ctx context.Context, upd wire.ProfileUpdate) error {
	u := a.User()
	if u == nil {
		return ErrNotLoggedIn
	}
	upd.ID = u.ID
	ctx, cancel := a.bound(ctx)
	defer cancel()
	if err := a.client.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	if upd.Email != "" && upd.Email != u.Email {
		u.Email = upd.Email
		return a.setUser(u)
	}
	return nil
}

func (a *Context) setUser(u *wire.User) error {
	p := persisted{BaseURL: a.client.BaseURL(), User: u, LoggedInAt: time.Now().UTC()}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0700); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}
	if err := os.WriteFile(a.path, data, 0600); err != nil {
		return fmt.Errorf("write auth: %w", err)
	}

	a.mu.Lock()
	cp := *u
	a.user = &cp
	a.mu.Unlock()
	a.publish(&cp)
	return nil
}

func (a *Context) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *Context) publish(u *wire.User) {
	if a.bus == nil {
		return
	}
	var payload Change
	if u != nil {
		cp := *u
		payload.User = &cp
	}
	a.bus.Publish(bus.Event{Kind: bus.AuthChanged, Payload: payload})
}

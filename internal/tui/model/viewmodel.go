// Package model holds client state shared by the TUI pages.
package model

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/schoolwatch/vtrack/internal/auth"
	"github.com/schoolwatch/vtrack/internal/search"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// DefaultReportLimit is how many violations the reports page loads.
const DefaultReportLimit = 100

// SessionFactory creates a fresh search session.
type SessionFactory func() *search.Session

// ViewModel owns the auth context, the search session of the visible
// search page and the cached reports feed.
type ViewModel struct {
	mu sync.RWMutex

	auth        *auth.Context
	newSession  SessionFactory
	session     *search.Session
	reports     []wire.Violation
	reportsAt   time.Time
	reportLimit int
	logger      *zap.Logger

	Flash *Flash
}

// NewViewModel wires a view model. newSession is called each time the
// search page is mounted.
func NewViewModel(a *auth.Context, newSession SessionFactory, logger *zap.Logger) *ViewModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewModel{
		auth:        a,
		newSession:  newSession,
		reportLimit: DefaultReportLimit,
		logger:      logger,
		Flash:       NewFlash(),
	}
}

// Auth returns the auth context.
func (vm *ViewModel) Auth() *auth.Context { return vm.auth }

// OpenSearch replaces any current session with an empty one.
func (vm *ViewModel) OpenSearch() *search.Session {
	s := vm.newSession()
	vm.mu.Lock()
	old := vm.session
	vm.session = s
	vm.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return s
}

// CloseSearch destroys the current session, if any.
func (vm *ViewModel) CloseSearch() {
	vm.mu.Lock()
	s := vm.session
	vm.session = nil
	vm.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

// Session returns the live search session, or nil when the search page is
// not mounted.
func (vm *ViewModel) Session() *search.Session {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.session
}

// SetReportLimit changes how many rows LoadReports asks for.
func (vm *ViewModel) SetReportLimit(n int) {
	vm.mu.Lock()
	vm.reportLimit = n
	vm.mu.Unlock()
}

// LoadReports fetches the newest violations.
func (vm *ViewModel) LoadReports(ctx context.Context) error {
	vm.mu.RLock()
	limit := vm.reportLimit
	vm.mu.RUnlock()

	list, err := vm.auth.Client().ListViolations(ctx, limit)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.reports = list
	vm.reportsAt = time.Now()
	vm.mu.Unlock()
	return nil
}

// Reports returns the cached feed and when it was loaded.
func (vm *ViewModel) Reports() ([]wire.Violation, time.Time) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return append([]wire.Violation(nil), vm.reports...), vm.reportsAt
}

// Logout closes the search session, drops cached data and signs out.
func (vm *ViewModel) Logout() error {
	vm.CloseSearch()
	vm.mu.Lock()
	vm.reports = nil
	vm.reportsAt = time.Time{}
	vm.mu.Unlock()
	return vm.auth.Logout()
}

// Describe turns an error from the auth or reports calls into a line for
// the user. Server messages are shown as-is.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrMissingFields):
		return "All fields are required"
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "Passwords don't match"
	case errors.Is(err, auth.ErrNotLoggedIn):
		return "Please log in first"
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to answer"
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return "Cannot reach the server"
}

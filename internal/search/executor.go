package search

import (
	"context"
	"strings"
	"time"

	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// Executor performs the authoritative search.
type Executor struct {
	backend Backend
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecutor wraps backend. A zero timeout leaves ctx untouched.
func NewExecutor(backend Backend, timeout time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{backend: backend, timeout: timeout, logger: logger}
}

// Execute trims query and runs the search. Blank queries return ErrEmptyQuery
// without touching the backend.
func (e *Executor) Execute(ctx context.Context, query string, typ Type) ([]wire.Violation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := e.backend.Search(ctx, wire.SearchRequest{Query: query, Type: typ.Wire()})
	if err != nil {
		e.logger.Warn("search failed",
			zap.String("query", query), zap.Stringer("type", typ), zap.Error(err))
		return nil, err
	}
	e.logger.Info("search completed",
		zap.String("query", query), zap.Stringer("type", typ),
		zap.Int("results", len(results)), zap.Duration("took", time.Since(start)))
	return results, nil
}

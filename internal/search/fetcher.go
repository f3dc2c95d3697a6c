package search

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// MinSuggestLength is the shortest query that asks the backend for suggestions.
const MinSuggestLength = 2

// SuggestionFetcher retrieves ranked autocomplete candidates.
type SuggestionFetcher struct {
	backend Backend
	timeout time.Duration
	logger  *zap.Logger
}

// NewSuggestionFetcher wraps backend. A zero timeout leaves ctx untouched.
func NewSuggestionFetcher(backend Backend, timeout time.Duration, logger *zap.Logger) *SuggestionFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionFetcher{backend: backend, timeout: timeout, logger: logger}
}

// Fetch sends one suggestion request. Duplicates are dropped, keeping the
// server's ranking.
func (f *SuggestionFetcher) Fetch(ctx context.Context, query string, typ Type) ([]string, error) {
	if utf8.RuneCountInString(query) < MinSuggestLength {
		return nil, ErrQueryTooShort
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	list, err := f.backend.Suggest(ctx, wire.SearchRequest{Query: query, Type: typ.Wire()})
	if err != nil {
		f.logger.Debug("suggestion fetch failed",
			zap.String("query", query), zap.Stringer("type", typ), zap.Error(err))
		return nil, err
	}
	f.logger.Debug("suggestions fetched",
		zap.String("query", query), zap.Int("count", len(list)), zap.Duration("took", time.Since(start)))
	return unique(list), nil
}

func unique(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

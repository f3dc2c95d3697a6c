package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/schoolwatch/vtrack/internal/store"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// SearchService answers suggestion and search requests.
type SearchService struct {
	db     *store.DB
	logger *zap.Logger
	loc    *time.Location
}

// NewSearchService creates a search service. Dates are formatted in loc,
// or the local zone when loc is nil.
func NewSearchService(db *store.DB, logger *zap.Logger, loc *time.Location) *SearchService {
	if loc == nil {
		loc = time.Local
	}
	return &SearchService{db: db, logger: logger, loc: loc}
}

func (s *SearchService) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req wire.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, failure(msgInvalidJSON))
		return
	}

	list, err := s.db.Suggestions(fieldFor(req.Type), req.Query)
	if err != nil {
		s.logger.Error("suggestions failed", zap.String("type", req.Type), zap.Error(err))
		writeJSON(w, http.StatusOK, failure("Could not load suggestions"))
		return
	}
	writeJSON(w, http.StatusOK, wire.SuggestionsResponse{
		Envelope:    wire.Envelope{Success: true},
		Suggestions: list,
	})
}

func (s *SearchService) Search(w http.ResponseWriter, r *http.Request) {
	var req wire.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, failure(msgInvalidJSON))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusOK, failure("Search query is required"))
		return
	}

	found, err := s.db.SearchViolations(fieldFor(req.Type), req.Query)
	if err != nil {
		s.logger.Error("search failed", zap.String("type", req.Type), zap.Error(err))
		writeJSON(w, http.StatusOK, failure("Search failed"))
		return
	}
	s.logger.Debug("search", zap.String("type", req.Type), zap.Int("results", len(found)))
	writeJSON(w, http.StatusOK, wire.ViolationsResponse{
		Envelope:   wire.Envelope{Success: true},
		Violations: toWireList(found, s.loc),
	})
}

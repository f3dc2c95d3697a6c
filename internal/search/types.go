// Package search implements the violation search session: debounced
// autocomplete suggestions, the authoritative search request and the state
// that reconciles the two.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/schoolwatch/vtrack/internal/status"
	"github.com/schoolwatch/vtrack/internal/wire"
)

// Type is the field a query is matched against.
type Type int

const (
	ByName Type = iota
	ByType
)

// ParseType maps a wire identifier to a Type.
func ParseType(v string) (Type, error) {
	switch v {
	case wire.TypeStudentName:
		return ByName, nil
	case wire.TypeViolationType:
		return ByType, nil
	}
	return ByName, fmt.Errorf("unknown search type %q", v)
}

// Wire returns the identifier sent to the backend.
func (t Type) Wire() string {
	if t == ByType {
		return wire.TypeViolationType
	}
	return wire.TypeStudentName
}

// Toggle returns the other search type.
func (t Type) Toggle() Type {
	if t == ByType {
		return ByName
	}
	return ByType
}

// Label is the human-readable name shown next to the search box.
func (t Type) Label() string {
	if t == ByType {
		return "Violation Type"
	}
	return "Student Name"
}

func (t Type) String() string { return t.Wire() }

// Backend is the remote side of a search session.
type Backend interface {
	Suggest(ctx context.Context, req wire.SearchRequest) ([]string, error)
	Search(ctx context.Context, req wire.SearchRequest) ([]wire.Violation, error)
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Query               string
	Type                Type
	Suggestions         []string
	ShowingSuggestions  bool
	FetchingSuggestions bool
	Results             []wire.Violation
	Searching           bool
	LastError           string
	State               status.State
}

func (s Snapshot) clone() Snapshot {
	s.Suggestions = slices.Clone(s.Suggestions)
	s.Results = slices.Clone(s.Results)
	return s
}

// Failure is the payload of bus.SearchFailed and bus.SuggestionsFailed events.
type Failure struct {
	Query   string
	Type    Type
	Message string
	Err     error
}

var (
	// ErrQueryTooShort is returned when a suggestion query is below MinSuggestLength.
	ErrQueryTooShort = errors.New("query too short for suggestions")
	// ErrEmptyQuery is returned when a search query is blank after trimming.
	ErrEmptyQuery = errors.New("search query is required")
)

// GenericSearchError is shown when a failed search carries no server message.
const GenericSearchError = "Search failed. Please try again."

// userMessager is implemented by errors that carry a server-provided message.
type userMessager interface {
	UserMessage() string
}

// UserMessage returns the text to show for a failed search.
func UserMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return GenericSearchError
}

package bus

import "time"

// Event kinds. The search.* kinds come from the search engine; the daemon
// publishes violation.* as records arrive.
const (
	SearchChanged     = "search.changed"
	SearchFailed      = "search.failed"
	SuggestionsFailed = "search.suggestions_failed"
	StateChanged      = "search.state_changed"
	AuthChanged       = "auth.changed"
	ViolationRecorded = "violation.recorded"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Package wire defines the JSON contracts exchanged between vtrackd and its
// clients. Field names match the legacy PHP backend so existing mobile builds
// keep working against vtrackd.
package wire

import (
	"encoding/json"
	"strings"
)

// Search type identifiers.
const (
	TypeStudentName   = "student_name"
	TypeViolationType = "violation_type"
)

// Envelope is the common part of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchRequest is the body of both the suggestion and search endpoints.
type SearchRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// SuggestionsResponse is returned by the suggestion endpoint.
type SuggestionsResponse struct {
	Envelope
	Suggestions []string `json:"suggestions"`
}

// ViolationsResponse is returned by the search and list endpoints.
type ViolationsResponse struct {
	Envelope
	Violations []Violation `json:"violations"`
}

// Violation is a single logged incident tied to a student.
type Violation struct {
	ID            int64    `json:"id"`
	StudentID     string   `json:"student_id"`
	StudentName   string   `json:"student_name"`
	GradeLevel    string   `json:"grade_level"`
	Section       string   `json:"section"`
	ViolationType string   `json:"violation_type"`
	DateFormatted string   `json:"date_formatted"`
	Status        Status   `json:"status"`
	Confidence    *float64 `json:"confidence,omitempty"`
	ReportedBy    string   `json:"reported_by"`
}

// NewViolation is the body of the violation submission endpoint.
type NewViolation struct {
	StudentID     string   `json:"student_id"`
	StudentName   string   `json:"student_name"`
	ViolationType string   `json:"violation_type"`
	GradeLevel    string   `json:"grade_level,omitempty"`
	Section       string   `json:"section,omitempty"`
	Status        string   `json:"status,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	ReportedBy    string   `json:"reported_by,omitempty"`
}

// SubmitViolationResponse acknowledges a recorded violation.
type SubmitViolationResponse struct {
	Envelope
	ViolationID int64 `json:"violation_id,omitempty"`
}

// Status is the closed set of violation workflow states.
type Status int

const (
	StatusPending Status = iota
	StatusInReview
	StatusResolved
	StatusNew
)

var statusNames = [...]string{
	StatusPending:  "pending",
	StatusInReview: "in review",
	StatusResolved: "resolved",
	StatusNew:      "new",
}

// Statuses lists every Status value in declaration order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInReview, StatusResolved, StatusNew}
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// ParseStatus matches case-insensitively and ignores surrounding space.
// The second result is false for unrecognized input.
func ParseStatus(v string) (Status, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range statusNames {
		if name == v {
			return Status(i), true
		}
	}
	return StatusPending, false
}

// MarshalJSON encodes the status as its lowercase name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts any casing; unknown values decode as pending.
func (s *Status) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s, _ = ParseStatus(v)
	return nil
}

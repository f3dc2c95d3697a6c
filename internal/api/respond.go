package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/schoolwatch/vtrack/internal/store"
	"github.com/schoolwatch/vtrack/internal/wire"
)

// DateLayout formats violation timestamps the way the mobile client shows them.
const DateLayout = "Jan 02, 2006 03:04 PM"

const maxBody = 1 << 20

const msgInvalidJSON = "Invalid JSON data"

var errInvalidJSON = errors.New("invalid json body")

func failure(msg string) wire.Envelope {
	return wire.Envelope{Success: false, Message: msg}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return errInvalidJSON
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errInvalidJSON
	}
	return nil
}

// fieldFor maps a request type onto a violation column. Anything other
// than student_name searches violation types.
func fieldFor(typ string) store.Field {
	if typ == "" || typ == wire.TypeStudentName {
		return store.FieldStudentName
	}
	return store.FieldViolationType
}

func toWire(v store.Violation, loc *time.Location) wire.Violation {
	st, _ := wire.ParseStatus(v.Status)
	reportedBy := v.ReportedBy
	if reportedBy == "" {
		reportedBy = "System"
	}
	return wire.Violation{
		ID:            v.ID,
		StudentID:     v.StudentID,
		StudentName:   v.StudentName,
		GradeLevel:    v.GradeLevel,
		Section:       v.Section,
		ViolationType: v.ViolationType,
		DateFormatted: time.UnixMilli(v.OccurredAt).In(loc).Format(DateLayout),
		Status:        st,
		Confidence:    v.Confidence,
		ReportedBy:    reportedBy,
	}
}

func toWireList(vs []store.Violation, loc *time.Location) []wire.Violation {
	out := make([]wire.Violation, 0, len(vs))
	for _, v := range vs {
		out = append(out, toWire(v, loc))
	}
	return out
}

package api

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/schoolwatch/vtrack/internal/bus"
	"github.com/schoolwatch/vtrack/internal/store"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// ViolationService records and lists violations.
type ViolationService struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
	loc    *time.Location
}

// NewViolationService creates a violation service. Recorded violations are
// announced on b when it is non-nil.
func NewViolationService(db *store.DB, b *bus.Bus, logger *zap.Logger, loc *time.Location) *ViolationService {
	if loc == nil {
		loc = time.Local
	}
	return &ViolationService{db: db, bus: b, logger: logger, loc: loc}
}

func (s *ViolationService) Submit(w http.ResponseWriter, r *http.Request) {
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct != "application/json" {
		writeJSON(w, http.StatusBadRequest, failure("Invalid request format"))
		return
	}
	var req wire.NewViolation
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("Invalid request format"))
		return
	}

	for _, f := range []struct{ name, value string }{
		{"student_id", req.StudentID},
		{"student_name", req.StudentName},
		{"violation_type", req.ViolationType},
	} {
		if strings.TrimSpace(f.value) == "" {
			writeJSON(w, http.StatusBadRequest, failure("Missing field: "+f.name))
			return
		}
	}

	st := wire.StatusPending
	if req.Status != "" {
		var ok bool
		if st, ok = wire.ParseStatus(req.Status); !ok {
			writeJSON(w, http.StatusBadRequest, failure("Invalid status: "+req.Status))
			return
		}
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 100) {
		writeJSON(w, http.StatusBadRequest, failure("Confidence must be between 0 and 100"))
		return
	}

	v := &store.Violation{
		StudentID:     strings.TrimSpace(req.StudentID),
		StudentName:   strings.TrimSpace(req.StudentName),
		GradeLevel:    req.GradeLevel,
		Section:       req.Section,
		ViolationType: strings.TrimSpace(req.ViolationType),
		Status:        st.String(),
		Confidence:    req.Confidence,
		ReportedBy:    req.ReportedBy,
	}
	if err := s.db.InsertViolation(v); err != nil {
		s.logger.Error("insert violation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("DB error"))
		return
	}

	s.logger.Info("violation recorded",
		zap.Int64("violation_id", v.ID),
		zap.String("student_id", v.StudentID),
		zap.String("violation_type", v.ViolationType),
	)
	if s.bus != nil {
		s.bus.Publish(bus.Event{Kind: bus.ViolationRecorded, Payload: toWire(*v, s.loc)})
	}
	writeJSON(w, http.StatusOK, wire.SubmitViolationResponse{
		Envelope:    wire.Envelope{Success: true, Message: "Violation recorded"},
		ViolationID: v.ID,
	})
}

// List returns violations newest first. An optional ?limit=N caps the count.
func (s *ViolationService) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, failure("Invalid limit"))
			return
		}
		limit = n
	}

	all, err := s.db.ListViolations(limit)
	if err != nil {
		s.logger.Error("list violations failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Database error"))
		return
	}
	writeJSON(w, http.StatusOK, wire.ViolationsResponse{
		Envelope:   wire.Envelope{Success: true},
		Violations: toWireList(all, s.loc),
	})
}

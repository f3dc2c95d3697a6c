package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/schoolwatch/vtrack/internal/store"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// StudentService maintains the student registry used by face recognition.
type StudentService struct {
	db     *store.DB
	logger *zap.Logger
}

// NewStudentService creates a student service.
func NewStudentService(db *store.DB, logger *zap.Logger) *StudentService {
	return &StudentService{db: db, logger: logger}
}

func (s *StudentService) Register(w http.ResponseWriter, r *http.Request) {
	var req wire.Student
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(msgInvalidJSON))
		return
	}
	st := &store.Student{
		Name:       strings.TrimSpace(req.Name),
		LRN:        strings.TrimSpace(req.LRN),
		GradeLevel: strings.TrimSpace(req.GradeLevel),
		Section:    strings.TrimSpace(req.Section),
	}
	if st.Name == "" || st.LRN == "" || st.GradeLevel == "" || st.Section == "" {
		writeJSON(w, http.StatusBadRequest, failure("All fields are required"))
		return
	}

	if err := s.db.InsertStudent(st); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeJSON(w, http.StatusConflict, failure("A student with this LRN already exists"))
			return
		}
		s.logger.Error("register student failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Database error"))
		return
	}

	s.logger.Info("student registered", zap.Int64("student_id", st.ID), zap.String("lrn", st.LRN))
	writeJSON(w, http.StatusOK, wire.Envelope{Success: true, Message: "Student registered successfully"})
}

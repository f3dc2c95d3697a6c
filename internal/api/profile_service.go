package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/schoolwatch/vtrack/internal/store"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ProfileService reads and edits guard profiles.
type ProfileService struct {
	db     *store.DB
	logger *zap.Logger
	cost   int
}

// NewProfileService creates a profile service. cost is the bcrypt cost used
// for password changes; zero means bcrypt.DefaultCost.
func NewProfileService(db *store.DB, logger *zap.Logger, cost int) *ProfileService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &ProfileService{db: db, logger: logger, cost: cost}
}

func (s *ProfileService) Get(w http.ResponseWriter, r *http.Request) {
	var req wire.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, failure(msgInvalidJSON))
		return
	}

	u, err := s.db.UserByID(req.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, failure("Profile not found"))
		return
	}
	if err != nil {
		s.logger.Error("profile lookup failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Could not load profile"))
		return
	}

	writeJSON(w, http.StatusOK, wire.ProfileResponse{
		Envelope: wire.Envelope{Success: true},
		Profile: &wire.Profile{
			FullName:      u.FullName,
			Email:         u.Email,
			Address:       u.Address,
			ContactNumber: u.ContactNumber,
			ProfilePhoto:  u.ProfilePhoto,
		},
	})
}

func (s *ProfileService) Update(w http.ResponseWriter, r *http.Request) {
	var req wire.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(msgInvalidJSON))
		return
	}
	if req.ID == 0 {
		writeJSON(w, http.StatusBadRequest, failure("Missing required fields"))
		return
	}

	current, err := s.db.UserByID(req.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, failure("Profile not found"))
		return
	}
	if err != nil {
		s.logger.Error("profile lookup failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Update failed"))
		return
	}

	current.FullName = strings.TrimSpace(req.FullName)
	current.Address = strings.TrimSpace(req.Address)
	current.ContactNumber = strings.TrimSpace(req.ContactNumber)
	if email := strings.TrimSpace(req.Email); email != "" {
		current.Email = email
	}

	var hash string
	if req.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
		if err != nil {
			writeJSON(w, http.StatusOK, failure("Password is too long"))
			return
		}
		hash = string(b)
	}

	if err := s.db.UpdateProfile(current, hash); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeJSON(w, http.StatusOK, failure("Email already in use"))
			return
		}
		s.logger.Error("profile update failed", zap.Int64("user_id", req.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Update failed"))
		return
	}

	s.logger.Info("profile updated", zap.Int64("user_id", req.ID), zap.Bool("password_changed", hash != ""))
	writeJSON(w, http.StatusOK, wire.Envelope{Success: true, Message: "Profile updated successfully"})
}

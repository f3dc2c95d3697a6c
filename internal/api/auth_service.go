package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolwatch/vtrack/internal/store"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ResetTokenTTL is how long a password-reset token stays valid.
const ResetTokenTTL = time.Hour

// AuthService handles guard accounts.
type AuthService struct {
	db     *store.DB
	logger *zap.Logger
	cost   int
	now    func() time.Time
}

// NewAuthService creates an auth service. cost is the bcrypt cost; zero
// means bcrypt.DefaultCost.
func NewAuthService(db *store.DB, logger *zap.Logger, cost int) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{db: db, logger: logger, cost: cost, now: time.Now}
}

func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req wire.Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, failure(msgInvalidJSON))
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusOK, failure("Username and password are required"))
		return
	}

	u, err := s.db.UserByUsername(req.Username)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, failure("User not found"))
		return
	}
	if err != nil {
		s.logger.Error("login lookup failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Login failed"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusOK, failure("Invalid credentials"))
		return
	}

	s.logger.Info("login", zap.Int64("user_id", u.ID))
	writeJSON(w, http.StatusOK, wire.UserResponse{
		Envelope: wire.Envelope{Success: true, Message: "Login successful"},
		User:     &wire.User{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}

func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req wire.Registration
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, failure(msgInvalidJSON))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusOK, failure("All fields are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes.
		writeJSON(w, http.StatusOK, failure("Password is too long"))
		return
	}
	u := &store.User{Username: req.Username, Email: req.Email, Password: string(hash)}
	if err := s.db.CreateUser(u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeJSON(w, http.StatusOK, failure("Username or email already exists"))
			return
		}
		s.logger.Error("register failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Registration failed"))
		return
	}

	s.logger.Info("registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	writeJSON(w, http.StatusOK, wire.UserResponse{
		Envelope: wire.Envelope{Success: true, Message: "Registration successful"},
		User:     &wire.User{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}

func (s *AuthService) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req wire.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, failure(msgInvalidJSON))
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeJSON(w, http.StatusOK, failure("Email is required"))
		return
	}

	token := uuid.NewString()
	err := s.db.SetResetToken(email, token, s.now().Add(ResetTokenTTL))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, failure("Email not found"))
		return
	}
	if err != nil {
		s.logger.Error("set reset token failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failure("Could not issue reset token"))
		return
	}

	writeJSON(w, http.StatusOK, wire.ForgotPasswordResponse{
		Envelope: wire.Envelope{Success: true, Message: "Password reset link sent to your email"},
		Token:    token,
	})
}

// Package api serves the vtrack REST endpoints consumed by the terminal
// client and the legacy mobile app.
package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Services bundles the handlers mounted by NewRouter.
type Services struct {
	Auth       *AuthService
	Profile    *ProfileService
	Search     *SearchService
	Violations *ViolationService
	Students   *StudentService
}

type route struct {
	path    string
	legacy  string
	method  string
	handler http.HandlerFunc
}

// NewRouter mounts every endpoint under /api and under its legacy PHP path.
func NewRouter(s Services, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := mux.NewRouter()
	r.Use(requestID, accessLog(logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)

	routes := []route{
		{"/api/login", "/login.php", http.MethodPost, s.Auth.Login},
		{"/api/register", "/register.php", http.MethodPost, s.Auth.Register},
		{"/api/forgot-password", "/forgot_password.php", http.MethodPost, s.Auth.ForgotPassword},
		{"/api/profile", "/get_profile.php", http.MethodPost, s.Profile.Get},
		{"/api/profile/update", "/update_profile.php", http.MethodPost, s.Profile.Update},
		{"/api/search/suggestions", "/get_search_suggestions.php", http.MethodPost, s.Search.Suggestions},
		{"/api/search", "/search_violation.php", http.MethodPost, s.Search.Search},
		{"/api/violations", "/submit_violation", http.MethodPost, s.Violations.Submit},
		{"/api/violations", "/get_violations", http.MethodGet, s.Violations.List},
		{"/api/students", "/register_face.php", http.MethodPost, s.Students.Register},
	}
	for _, rt := range routes {
		r.HandleFunc(rt.path, rt.handler).Methods(rt.method)
		r.HandleFunc(rt.legacy, rt.handler).Methods(rt.method)
	}

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, failure("Invalid request method"))
	})
	return r
}

package handlers

import (
	"net/http"
	"time"

	"github.com/Togather-Foundation/planner/internal/api/middleware"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/Togather-Foundation/planner/internal/metrics"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	Service *users.Service
	Env     string
}

func NewAuthHandler(service *users.Service, env string) *AuthHandler {
	return &AuthHandler{Service: service, Env: env}
}

type statusResponse struct {
	AdminExists bool `json:"adminExists"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    users.UserInfo `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        users.UserInfo `json:"user"`
}

type meResponse struct {
	User users.UserInfo `json:"user"`
}

// Status handles GET /api/auth/status.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	exists, err := h.Service.AdminExists(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{AdminExists: exists})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	info, err := h.Service.Register(r.Context(), users.RegisterParams{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Message: "administrator registered", User: info})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		writeError(w, r, err, h.Env)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		ExpiresAt:   result.ExpiresAt.UTC(),
		User:        result.User,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// discarding its copy is the whole logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// Me handles GET /api/auth/me behind RequireAdmin.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, r, users.ErrUnauthenticated, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: users.UserInfo{ID: principal.UserID, Username: principal.Username}})
}

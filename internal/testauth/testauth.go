// Package testauth wires the planner services over in-memory stores for
// HTTP-level tests and signs tokens the way a real login does.
// It must never be used by production code.
package testauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Togather-Foundation/planner/internal/audit"
	"github.com/Togather-Foundation/planner/internal/auth"
	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultSecret is the development JWT secret shared by the tests.
	DefaultSecret = "dev_jwt_secret_change_me_in_production"
	DefaultIssuer = "togather-planner-test"
)

// Config configures a Harness. Zero values fall back to the defaults above.
type Config struct {
	JWTSecret string
	Issuer    string
	Expiry    time.Duration
	Logger    *zerolog.Logger
}

// Harness is a fully wired set of services backed by memory stores.
type Harness struct {
	Users      *users.Service
	Events     *events.Service
	Tokens     *auth.JWTManager
	UserStore  *MemoryUsers
	EventStore *MemoryEvents
}

func New(cfg Config) *Harness {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DefaultSecret
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = time.Hour
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.Expiry, cfg.Issuer)
	auditLogger := audit.NewLoggerWithZerolog(logger)
	userStore := NewMemoryUsers()
	eventStore := NewMemoryEvents()

	return &Harness{
		Users:      users.NewService(userStore, auth.NewPasswordHasher(bcrypt.MinCost), tokens, auditLogger, logger),
		Events:     events.NewService(eventStore, auditLogger, logger),
		Tokens:     tokens,
		UserStore:  userStore,
		EventStore: eventStore,
	}
}

// RegisterAdmin bootstraps the administrator and returns a bearer token for it.
func (h *Harness) RegisterAdmin(username, password string) (users.UserInfo, string, error) {
	info, err := h.Users.Register(context.Background(), users.RegisterParams{
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return users.UserInfo{}, "", fmt.Errorf("register admin: %w", err)
	}
	result, err := h.Users.Login(context.Background(), username, password)
	if err != nil {
		return users.UserInfo{}, "", fmt.Errorf("login admin: %w", err)
	}
	return info, result.Token, nil
}

// AdminToken signs an admin token for subject without touching the stores.
func (h *Harness) AdminToken(subject, username string) (string, error) {
	token, _, err := h.Tokens.Generate(subject, username, auth.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT: %w", err)
	}
	return token, nil
}

// AddAuth sets the bearer Authorization header. An empty token is a no-op.
func AddAuth(req *http.Request, token string) {
	if req == nil || token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

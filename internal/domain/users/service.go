package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Togather-Foundation/planner/internal/audit"
	"github.com/Togather-Foundation/planner/internal/auth"
	"github.com/Togather-Foundation/planner/internal/domain/ids"
	"github.com/rs/zerolog"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserInfo
}

// Service handles admin bootstrap registration, login and token checks.
type Service struct {
	repo        Repository
	hasher      *auth.PasswordHasher
	tokens      *auth.JWTManager
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

// NewService wires the admin account service to its store, hasher and token issuer.
func NewService(repo Repository, hasher *auth.PasswordHasher, tokens *auth.JWTManager, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "users").Logger(),
	}
}

// AdminExists reports whether the bootstrap administrator has registered.
func (s *Service) AdminExists(ctx context.Context) (bool, error) {
	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return exists, nil
}

// Register creates the one and only administrator. Checks run in a fixed
// order: registration closed, field rules, password confirmation, then
// username uniqueness.
func (s *Service) Register(ctx context.Context, params RegisterParams) (UserInfo, error) {
	exists, err := s.AdminExists(ctx)
	if err != nil {
		return UserInfo{}, err
	}
	if exists {
		return UserInfo{}, ErrAdminExists
	}

	params, err = normalizeRegistration(params)
	if err != nil {
		return UserInfo{}, err
	}
	if params.Password != params.ConfirmPassword {
		return UserInfo{}, ErrPasswordMismatch
	}

	if _, err := s.repo.GetByUsername(ctx, params.Username); err == nil {
		return UserInfo{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return UserInfo{}, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return UserInfo{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, User{
		ID:           ids.NewUUID(),
		Username:     params.Username,
		PasswordHash: hash,
		IsAdmin:      true,
	})
	if err != nil {
		if errors.Is(err, ErrAdminExists) || errors.Is(err, ErrUsernameTaken) {
			return UserInfo{}, err
		}
		return UserInfo{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("administrator registered")
	s.auditLogger.LogSuccess(ctx, audit.ActionAdminRegistered, created.Username, "user", created.ID, nil)
	return created.Info(), nil
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong passwords return the same error and cost the same bcrypt work.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.hasher.Verify("", password)
		return LoginResult{}, s.loginFailed(ctx, username)
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, fmt.Errorf("get user: %w", err)
		}
		s.hasher.Verify("", password)
		return LoginResult{}, s.loginFailed(ctx, username)
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return LoginResult{}, s.loginFailed(ctx, username)
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username, roleFor(*user))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.auditLogger.LogSuccess(ctx, audit.ActionLoginSucceeded, user.Username, "user", user.ID, nil)
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user.Info()}, nil
}

// Authenticate resolves a bearer token to the administrator it was issued to.
func (s *Service) Authenticate(_ context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if !auth.HasRole(claims.Role, auth.RoleAdmin) {
		return nil, ErrUnauthenticated
	}
	return &Principal{UserID: claims.Subject, Username: claims.Username}, nil
}

func (s *Service) loginFailed(ctx context.Context, username string) error {
	s.logger.Warn().Str("username", username).Msg("login failed")
	s.auditLogger.LogFailure(ctx, audit.ActionLoginFailed, username, map[string]string{"reason": "invalid credentials"})
	return ErrInvalidCredentials
}

func roleFor(user User) auth.Role {
	if user.IsAdmin {
		return auth.RoleAdmin
	}
	return ""
}

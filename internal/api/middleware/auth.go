package middleware

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/planner/internal/api/problem"
	"github.com/Togather-Foundation/planner/internal/auth"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/rs/zerolog"
)

// Authenticator resolves a bearer token to the administrator it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*users.Principal, error)
}

const principalKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p *users.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the administrator attached by RequireAdmin,
// or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *users.Principal {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(principalKey).(*users.Principal)
	return p
}

// RequireAdmin rejects requests without a valid administrator token with 401.
func RequireAdmin(authn Authenticator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := principalFromRequest(r, authn)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="planner"`)
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env,
					problem.WithDetail("authentication required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipalLogger(r.Context(), principal)))
		})
	}
}

func principalFromRequest(r *http.Request, authn Authenticator) (*users.Principal, error) {
	token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return authn.Authenticate(r.Context(), token)
}

func withPrincipalLogger(ctx context.Context, p *users.Principal) context.Context {
	ctx = WithPrincipal(ctx, p)
	logger := zerolog.Ctx(ctx).With().Str("user", p.Username).Logger()
	return logger.WithContext(ctx)
}

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTGenerateValidate(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "issuer")
	jwtToken, expiresAt, err := manager.Generate("user-1", "alice", RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	claims, err := manager.Validate(jwtToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "alice" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestJWTGenerateInvalid(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "issuer")
	if _, _, err := manager.Generate("", "alice", RoleAdmin); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestJWTValidateMissing(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "issuer")
	if _, err := manager.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestJWTValidateWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret", time.Hour, "issuer")
	token, _, err := issuer.Generate("user-1", "alice", RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	other := NewJWTManager("other-secret", time.Hour, "issuer")
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestJWTValidateWrongIssuer(t *testing.T) {
	token, _, err := NewJWTManager("secret", time.Hour, "a").Generate("user-1", "alice", RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := NewJWTManager("secret", time.Hour, "b").Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestJWTValidateExpired(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute, "issuer")
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := manager.Generate("user-1", "alice", RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	if _, err := TokenFromHeader("nope"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if _, err := TokenFromHeader("Basic abc"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if token, err := TokenFromHeader("Bearer token"); err != nil || token != "token" {
		t.Fatalf("expected token, got %s err %v", token, err)
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole(" Admin ", RoleAdmin) {
		t.Fatal("expected admin role to match")
	}
	if HasRole("viewer", RoleAdmin) {
		t.Fatal("expected viewer role to be rejected")
	}
	if HasRole("admin") {
		t.Fatal("expected no allowed roles to reject")
	}
}

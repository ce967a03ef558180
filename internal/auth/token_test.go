package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret-key", 60)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleModerator)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expiry not in the future")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %s, want user-1", claims.UserID)
	}
	if claims.Role != domain.RoleModerator {
		t.Errorf("role = %s, want MODERATOR", claims.Role)
	}
}

func TestParseTokenRejections(t *testing.T) {
	tm := NewTokenManager("secret-key", 60)
	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("different-secret", 60)
		if _, err := other.ParseToken(token); err == nil {
			t.Error("token accepted with wrong secret")
		}
	})
	t.Run("garbage", func(t *testing.T) {
		if _, err := tm.ParseToken("not.a.jwt"); err == nil {
			t.Error("garbage token accepted")
		}
	})
	t.Run("expired", func(t *testing.T) {
		short := &TokenManager{secret: []byte("secret-key"), ttl: -time.Minute}
		expired, _, err := short.GenerateToken("user-1", domain.RoleUser)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, err := tm.ParseToken(expired); err == nil {
			t.Error("expired token accepted")
		}
	})
}

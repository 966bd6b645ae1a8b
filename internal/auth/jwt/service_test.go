package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestNewService_RequiresSecret(t *testing.T) {
	if _, err := NewService(Config{}); err == nil {
		t.Error("expected error for missing secret")
	}
}

func TestIssueParse_RoundTrip(t *testing.T) {
	svc := newTestService(t, Config{})

	token, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected userId user-123, got %s", claims.UserID)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected sub user-123, got %s", claims.Subject)
	}
}

func TestIssue_DefaultTTLIsOneHour(t *testing.T) {
	svc := newTestService(t, Config{})
	if svc.TTL() != time.Hour {
		t.Errorf("expected default TTL of 1h, got %s", svc.TTL())
	}

	token, err := svc.Issue("u")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != time.Hour {
		t.Errorf("expected exp-iat of 1h, got %s", lifetime)
	}
}

func TestParse_Expired(t *testing.T) {
	svc := newTestService(t, Config{TTL: -time.Minute})

	token, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	issuer := newTestService(t, Config{Secret: "secret-a"})
	verifier := newTestService(t, Config{Secret: "secret-b"})

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, ErrSignature) {
		t.Errorf("expected ErrSignature, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	svc := newTestService(t, Config{})

	for _, bad := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.."} {
		if _, err := svc.Parse(bad); !errors.Is(err, ErrMalformed) {
			t.Errorf("token %q: expected ErrMalformed, got %v", bad, err)
		}
	}
}

// Package jwt issues and verifies the signed, stateless session tokens that
// carry a user's identity between login and every subsequent request.
//
// Tokens are HS256-signed and self-contained: user ID, issued-at, and an
// absolute expiry one hour after issuance. No token state is held server-side,
// so verification is a pure signature-and-expiry check.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Typed verification failures. Callers that must not leak detail to clients
// (the auth middleware) collapse all three to a single unauthorized response.
var (
	// ErrExpired indicates the token's expiry has passed.
	ErrExpired = errors.New("jwt: token expired")
	// ErrSignature indicates the signature does not match the signing secret.
	ErrSignature = errors.New("jwt: invalid signature")
	// ErrMalformed indicates the token cannot be parsed at all.
	ErrMalformed = errors.New("jwt: malformed token")
)

// Claims is the token payload: the owning user plus standard time claims.
type Claims struct {
	gojwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Service issues and parses session tokens.
type Service struct {
	cfg Config
}

// NewService creates a token service from config.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.cfg.TTL
}

// Issue creates a signed token bound to userID, expiring TTL from now.
func (s *Service) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		UserID: userID,
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims.
// Failures are one of ErrExpired, ErrSignature, or ErrMalformed.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, translateParseError(err)
	}
	if !token.Valid {
		return nil, ErrMalformed
	}
	if claims.UserID == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// keyFunc rejects tokens whose header claims a different signing method.
func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

func translateParseError(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return ErrSignature
	default:
		return ErrMalformed
	}
}

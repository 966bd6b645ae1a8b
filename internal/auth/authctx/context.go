// Package authctx propagates the authenticated user's identity through the
// request context. The auth middleware resolves a bearer token once and
// attaches the user ID; downstream code reads it without re-verifying.
package authctx

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

// userIDKey is the single key used to store the authenticated user ID.
var userIDKey = contextKey{}

// ErrNoIdentity is returned when no authenticated user is in the context.
var ErrNoIdentity = errors.New("authctx: no authenticated user in context")

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID retrieves the authenticated user ID from the context.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// RequireUserID retrieves the authenticated user ID or returns ErrNoIdentity.
func RequireUserID(ctx context.Context) (string, error) {
	id, ok := UserID(ctx)
	if !ok {
		return "", ErrNoIdentity
	}
	return id, nil
}

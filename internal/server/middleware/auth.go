package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskd/internal/auth/authctx"
	"github.com/kbukum/taskd/internal/auth/jwt"
	apperrors "github.com/kbukum/taskd/internal/errors"
)

// ContextUserID is the Gin context key holding the authenticated user's ID.
const ContextUserID = "user_id"

// Auth returns a Gin middleware that requires a valid Bearer token. On
// success the token's user ID is stored both in the Gin context and on the
// request's context.Context; every token failure, whatever its cause, is a
// 401 so the response reveals nothing about the token's internals.
func Auth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, appErr := bearerToken(c.GetHeader("Authorization"))
		if appErr != nil {
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			appErr := translateTokenError(err)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Request = c.Request.WithContext(authctx.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, *apperrors.AppError) {
	if header == "" {
		return "", apperrors.Unauthorized("Authorization header required.")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperrors.Unauthorized("Invalid authorization header format.")
	}
	return parts[1], nil
}

func translateTokenError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return apperrors.TokenExpired()
	default:
		return apperrors.InvalidToken()
	}
}

// UserID returns the authenticated user's ID from the Gin context.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// Package api exposes the HTTP surface: credential endpoints under /api/auth
// and token-guarded task CRUD under /api/task.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskd/internal/account"
	apperrors "github.com/kbukum/taskd/internal/errors"
	"github.com/kbukum/taskd/internal/server"
)

// AuthHandler serves the registration and login endpoints.
type AuthHandler struct {
	accounts *account.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts *account.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in account.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be valid JSON."))
		return
	}

	if err := h.accounts.Register(c.Request.Context(), in); err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondCreated(c, gin.H{"message": "User registered successfully."})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in account.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be valid JSON."))
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, gin.H{"token": token})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/taskd/internal/errors"
)

// RespondWithError inspects err: if it is an *apperrors.AppError the status
// and structured body are derived automatically; otherwise a generic 500 is
// sent and the cause stays server-side.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// RespondOK sends a 200 response with the given body.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// RespondCreated sends a 201 response with the given body.
func RespondCreated(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

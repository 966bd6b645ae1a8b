package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/taskd/internal/errors"
	"github.com/kbukum/taskd/internal/logger"
)

// Recovery returns a Gin middleware that recovers from panics, logs the stack
// server-side, and answers with an opaque 500.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"client_ip", c.ClientIP(),
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apperrors.Internal(fmt.Errorf("%v", err)).ToResponse())
			}
		}()
		c.Next()
	}
}

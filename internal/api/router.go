package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskd/internal/auth/jwt"
	"github.com/kbukum/taskd/internal/server/middleware"
)

// Routes bundles everything the router needs.
type Routes struct {
	Auth   *AuthHandler
	Tasks  *TaskHandler
	Tokens *jwt.Service
	Health gin.HandlerFunc
}

// Register mounts all routes on the engine. The /api/auth endpoints are
// public; everything under /api/task requires a valid Bearer token.
func Register(engine *gin.Engine, r Routes) {
	if r.Health != nil {
		engine.GET("/health", r.Health)
	}

	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", r.Auth.Register)
		auth.POST("/login", r.Auth.Login)
	}

	tasks := engine.Group("/api/task", middleware.Auth(r.Tokens))
	{
		tasks.POST("", r.Tasks.Create)
		tasks.GET("", r.Tasks.List)
		tasks.GET("/:id", r.Tasks.Get)
		tasks.PUT("/:id", r.Tasks.Update)
		tasks.DELETE("/:id", r.Tasks.Delete)
	}
}

// HealthCheck builds a /health handler that pings the store.
func HealthCheck(ping func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

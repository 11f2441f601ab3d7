package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/api"
	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/types"
)

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

// SetupRouter configures the application routes
func SetupRouter(allowedOrigins []string, svc api.Services, health HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), middleware.Recovery())

	// CORS middleware
	router.Use(middleware.CORS(allowedOrigins))

	router.NoRoute(middleware.NotFound())
	router.GET("/health", healthHandler(health))

	api.SetupAPI(router, svc)
	return router
}

func healthHandler(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unavailable",
					"error":  types.NewErrorBody(http.StatusServiceUnavailable, types.CodeUnavailable, "database unreachable"),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "error": nil})
	}
}

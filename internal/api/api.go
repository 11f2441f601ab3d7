package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/service"
)

// Services bundles everything the handlers depend on
type Services struct {
	Auth        service.IAuthService
	Recipes     service.IRecipeService
	Preferences service.IPreferencesService
	Avatars     service.IAvatarService
	Extraction  service.IExtractionService
	Usage       service.IUsageService
	Beta        service.IBetaService

	// ImportLimiter may be nil when redis is not configured
	ImportLimiter *middleware.RateLimiter
}

// SetupAPI registers every route under /api/v1
func SetupAPI(router *gin.Engine, svc Services) {
	v1 := router.Group("/api/v1")
	requireAuth := middleware.AuthMiddleware(svc.Auth)

	NewAuthHandler(svc.Auth).RegisterRoutes(v1, requireAuth)
	NewRecipeHandler(svc.Recipes).RegisterRoutes(v1, requireAuth)
	NewImportHandler(svc.Extraction, svc.ImportLimiter).RegisterRoutes(v1, requireAuth)
	NewPreferencesHandler(svc.Preferences, svc.Avatars).RegisterRoutes(v1, requireAuth)
	NewAccountHandler(svc.Usage, svc.Beta).RegisterRoutes(v1, requireAuth)
}

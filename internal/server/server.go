package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/api"
	"github.com/pageza/recipebox/internal/database"
	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/router"
	"github.com/pageza/recipebox/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// Dependencies are the optional backends; nil disables the feature that needs them
type Dependencies struct {
	Redis *redis.Client
	S3    *config.S3Config
}

// New wires every service over db and builds the router
func New(cfg *config.Config, db *gorm.DB, deps Dependencies) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	emailService := service.NewEmailService(cfg)
	preferencesService := service.NewPreferencesService(db)
	usageService := service.NewUsageService(db)

	var store service.ObjectStore
	if deps.S3 != nil {
		store = service.NewS3ObjectStore(deps.S3)
	} else {
		log.Printf("[Server] No avatar bucket configured, avatar uploads disabled")
	}

	extraction := service.NewExtractionService(cfg.AnthropicAPIKey, cfg.AnthropicModel, usageService)
	if extraction == nil {
		log.Printf("[Server] ANTHROPIC_API_KEY not set, recipe import disabled")
	}

	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		limiter = middleware.NewImportRateLimiter(deps.Redis, cfg.ImportRateLimit)
	}

	svc := api.Services{
		Auth:          service.NewAuthService(db, cfg.JWTSecret, cfg.AccessTokenTTL, emailService),
		Recipes:       service.NewRecipeService(db),
		Preferences:   preferencesService,
		Avatars:       service.NewAvatarService(store, preferencesService),
		Extraction:    extraction,
		Usage:         usageService,
		Beta:          service.NewBetaService(db),
		ImportLimiter: limiter,
	}

	health := func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	}

	return &Server{
		cfg:    cfg,
		router: router.SetupRouter(cfg.AllowedOrigins, svc, health),
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[Server] Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

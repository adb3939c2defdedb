package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/api"
	"github.com/pageza/recepti/backend/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Recipes *api.RecipeHandler
	Uploads *api.UploadHandler
	Assets  *api.AssetHandler
	Health  *api.HealthHandler
}

// Options configures the cross-cutting middleware
type Options struct {
	Log         *zap.Logger
	CORSOrigins []string
	// Auth protects mutating routes when set
	Auth middleware.TokenValidator
	// RateLimiter throttles mutating routes when set
	RateLimiter *middleware.RateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = false
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(opts.CORSOrigins))
	router.NoRoute(middleware.NotFound)

	var write []gin.HandlerFunc
	if opts.RateLimiter != nil {
		write = append(write, opts.RateLimiter.Middleware())
	}
	if opts.Auth != nil {
		write = append(write, middleware.AdminAuth(opts.Auth, log))
	}

	if h.Health != nil {
		h.Health.RegisterRoutes(router)
	}
	if h.Recipes != nil {
		h.Recipes.RegisterRoutes(router, write...)
	}
	if h.Uploads != nil {
		h.Uploads.RegisterRoutes(router, write...)
	}
	if h.Assets != nil {
		h.Assets.RegisterRoutes(router)
	}

	return router
}

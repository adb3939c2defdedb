package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recepti/backend/config"
	"github.com/pageza/recepti/backend/internal/api"
	"github.com/pageza/recepti/backend/internal/cache"
	"github.com/pageza/recepti/backend/internal/database"
	"github.com/pageza/recepti/backend/internal/middleware"
	"github.com/pageza/recepti/backend/internal/router"
	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/storage"
)

const watcherDebounce = 200 * time.Millisecond

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	router  *gin.Engine
	http    *http.Server
	db      *gorm.DB
	redis   *redis.Client
	cache   cache.PathCache
	watcher *storage.Watcher
	closers []func() error
}

// New connects the database and optional Redis, builds the services and
// routes, and returns a server ready to Run.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{cfg: cfg, log: log}

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	s.db = db
	s.closers = append(s.closers, func() error { return database.Close(db) })

	if cfg.AutoMigrate {
		if err := database.RunMigrations(ctx, db, log); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.redis = client
		s.closers = append(s.closers, client.Close)
	}

	root, err := storage.NewRoot(cfg.AssetRoot)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.cache = s.newPathCache()

	mirror := storage.Mirror(storage.NoopMirror{})
	if cfg.S3Enabled() {
		m, err := storage.NewS3Mirror(ctx, storage.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3UsePathStyle,

			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		mirror = m
		log.Info("mirroring uploads to S3", zap.String("bucket", cfg.S3Bucket))
	}

	if cfg.WatchAssets {
		s.watcher = storage.NewWatcher(root, s.cache, log, watcherDebounce)
	}

	normalizer := service.NewImageNormalizer(root, s.cache, cfg.AssetURLPrefix)
	recipes := service.NewRecipeService(db, normalizer, log)
	assets := service.NewAssetService(root, mirror, s.cache, cfg.AssetURLPrefix, cfg.MaxUploadBytes, log)

	opts := router.Options{Log: log, CORSOrigins: cfg.CORSOrigins}
	if cfg.AuthEnabled() {
		opts.Auth = service.NewTokenService(cfg.AdminJWTSecret)
	}
	if s.redis != nil && cfg.RateLimitRequests > 0 {
		opts.RateLimiter = middleware.NewRateLimiter(s.redis, middleware.RateLimitConfig{
			Window: cfg.RateLimitWindow,
			Limit:  cfg.RateLimitRequests,
		}, log)
	}

	s.router = router.SetupRouter(router.Handlers{
		Recipes: api.NewRecipeHandler(recipes, assets, log),
		Uploads: api.NewUploadHandler(assets, log),
		Assets:  api.NewAssetHandler(root),
		Health: api.NewHealthHandler(func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		}, log),
	}, opts)

	return s, nil
}

func (s *Server) newPathCache() cache.PathCache {
	if s.cfg.CacheDriver == cache.DriverRedis && s.redis != nil {
		s.log.Info("using redis image path cache")
		return cache.NewRedisCache(s.redis, "", s.cfg.CacheTTL, s.log)
	}
	mc := cache.NewMemoryCache(s.cfg.CacheMaxEntries, s.cfg.CacheTTL)
	mc.StartJanitor(time.Minute)
	s.closers = append(s.closers, mc.Close)
	return mc
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if s.watcher != nil {
		go func() {
			if err := s.watcher.Run(watchCtx); err != nil {
				s.log.Warn("asset watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

// Close releases the database, Redis and cache resources
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warn("error during close", zap.Error(err))
		}
	}
	s.closers = nil
}

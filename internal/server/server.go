package server

import (
	"fmt"
	"net/http"
	"time"

	"stock-shop/internal/config"
	"stock-shop/internal/lockfile"
	custommiddleware "stock-shop/internal/middleware"
	"stock-shop/internal/repository"
	"stock-shop/internal/service"
	"stock-shop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "stock_shop_rate_limit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories; each store gets its own lock so the two
	// critical sections stay independent
	inventoryRepo := repository.NewInventoryRepository(
		cfg.Data.InventoryFile,
		lockfile.New(cfg.Data.InventoryLockFile()),
		cfg.Data.LockTimeout,
	)
	salesRepo := repository.NewSalesRepository(
		cfg.Data.SalesFile,
		lockfile.New(cfg.Data.SalesLockFile()),
		cfg.Data.LockTimeout,
	)

	// Initialize services
	inventoryService := service.NewInventoryService(inventoryRepo)
	cartService := service.NewCartService(inventoryRepo, salesRepo)
	analyticsService := service.NewAnalyticsService(inventoryRepo, salesRepo)

	// Initialize handlers and register routes
	transport.NewInventoryHandler(inventoryService, logger).RegisterRoutes(router)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router)
	transport.NewAnalyticsHandler(analyticsService, logger).RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stokline/skuflow_api/internal/cache"
	"github.com/stokline/skuflow_api/internal/config"
	"github.com/stokline/skuflow_api/internal/handler"
	"github.com/stokline/skuflow_api/internal/middleware"
	"github.com/stokline/skuflow_api/internal/repository"
	"github.com/stokline/skuflow_api/internal/service"
	"github.com/stokline/skuflow_api/internal/sse"
	"github.com/stokline/skuflow_api/internal/worker"
)

// main is the application entrypoint for the SKU fulfillment pipeline API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting skuflow api")

	// 3. Connect to Redis and initialize the snapshot store
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	snapshots := repository.NewRedisSnapshotStore(redisClient)

	// 4. Initialize the SKU service (restores state from snapshots)
	skuSvc, err := service.NewSKUService(snapshots)
	if err != nil {
		log.Error().Err(err).Msg("sku service initialization failed")
		fmt.Fprintf(os.Stderr, "sku service initialization failed: %v\n", err)
		os.Exit(1)
	}

	// 5. Wire SSE fan-out to the change feed
	hub := sse.NewHub()
	skuSvc.Subscribe(hub.BroadcastChanged)

	// 6. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(),
		SKU:    handler.NewSKUHandler(skuSvc),
		SSE:    handler.NewSSEHandler(hub),
	}

	// 7. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers)

	// 8. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 9. Start the capacity monitor worker
	go worker.NewCapacityWorker(skuSvc, &cfg.Monitor).Start(ctx)

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 12. Cancel context to stop workers
	cancel()

	// 13. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health *handler.HealthHandler
	SKU    *handler.SKUHandler
	SSE    *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	skus := router.Group("/v1/skus")
	{
		skus.POST("", handlers.SKU.CreateSKU)
		skus.GET("", handlers.SKU.GetSKUs)
		skus.GET("/events", handlers.SSE.Stream)
		skus.GET("/audit-logs", handlers.SKU.GetAuditLogs)
		skus.GET("/:id", handlers.SKU.GetSKUByID)
		skus.POST("/:id/reorder", handlers.SKU.ReorderQueue)
		skus.POST("/:id/cancel", handlers.SKU.CancelSKU)
		skus.POST("/:id/progress", handlers.SKU.ProgressToWarehouseAssignment)
		skus.POST("/:id/position", handlers.SKU.AssignWarehousePosition)
		skus.POST("/:id/move-backward", handlers.SKU.MoveBackward)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/safehaven/backend/internal/auth"
	"github.com/safehaven/backend/internal/cache"
	"github.com/safehaven/backend/internal/config"
	"github.com/safehaven/backend/internal/database"
	"github.com/safehaven/backend/internal/handlers"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/metrics"
	"github.com/safehaven/backend/internal/middleware"
	"github.com/safehaven/backend/internal/seed"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("Safe Haven server starting")

	// Open the store once; the handle is injected everywhere and closed on
	// shutdown.
	db, err := database.Open(cfg)
	if err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	// First start inserts the fixed community posts
	if err := seed.NewSeeder(db).SeedInitial(); err != nil {
		logger.FatalWithFields("Failed to seed initial posts", err)
	}

	// Redis is optional; it backs distributed rate limiting when configured
	if cfg.RedisHost != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, using in-memory rate limiting", err)
		} else {
			defer redisClient.Close()
		}
	}

	metrics.Initialize()

	authService := auth.NewService(db, cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.NewHandlers(db, authService)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		dbState := "ok"
		status := http.StatusOK
		if err := database.Health(db); err != nil {
			dbState = "unreachable"
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":    dbState,
			"timestamp": time.Now().UTC(),
			"service":   "safehaven-backend",
		})
	})

	// Prometheus exposition
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.Use(middleware.RateLimitAuth())
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", h.AuthMiddleware(), h.Me)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", h.ListPosts)
			posts.GET("/nearby", h.NearbyPosts)
			posts.GET("/:id", h.GetPost)
			posts.POST("", h.AuthMiddleware(), h.CreatePost)
			posts.POST("/:id/helpful", h.MarkHelpful)

			posts.GET("/:id/comments", h.ListComments)
			posts.POST("/:id/comments", h.AuthMiddleware(), h.CreateComment)

			posts.GET("/:id/images", h.ListImages)
			posts.POST("/:id/images", h.AuthMiddleware(), h.AddImage)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Safe Haven backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.FatalWithFields("Server forced to shutdown", err)
	}

	logger.Log.Info("Server exited")
}

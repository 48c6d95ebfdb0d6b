package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ecofloss-backend/config"
	"ecofloss-backend/middleware"
	"ecofloss-backend/processor"
	"ecofloss-backend/routes"
	"ecofloss-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "env files to load (default .env.local, .env)")
	port := pflag.String("port", "", "listen port (overrides PORT)")
	pflag.Parse()

	// Load environment variables
	if err := config.LoadEnv(*envFiles...); err != nil {
		log.Fatal("Error loading env file: ", err)
	}

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	// The secret key never leaves this process
	if err := config.ValidateRelayEnv(logger); err != nil {
		logger.Fatal("Environment validation failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.FrontendOrigins)))

	routes.SetupRoutes(r, routes.Deps{
		Processor:   processor.NewStripe(cfg.StripeSecretKey),
		RateLimiter: middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute, logger),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in a goroutine
	go func() {
		logger.Info("EcoFloss relay starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited gracefully")
}

// corsConfig allows the configured frontend origins, or every origin when none is set.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

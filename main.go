package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/regport/api-go/config"
	"github.com/regport/api-go/middleware"
	"github.com/regport/api-go/routes"
	"github.com/regport/api-go/workers"
)

func main() {
	// no .env in production, environment comes from the deployment
	_ = godotenv.Load()

	logger := config.NewLogger()

	// Initialize database
	db := config.InitDB()

	rps := 10.0
	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			rps = parsed
		}
	}
	limiter := middleware.NewRateLimiter(rps, int(rps)*2)
	defer limiter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeoutHours := 24
	if raw := os.Getenv("VALIDATION_TIMEOUT_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			timeoutHours = parsed
		}
	}
	sweeper := workers.NewStaleValidationSweeper(db, logger, 10*time.Minute, time.Duration(timeoutHours)*time.Hour)
	go sweeper.Start(ctx)

	// Create a new Gin router
	r := gin.Default()

	// Initialize routes
	routes.SetupRoutes(r, db, logger, limiter)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.WithField("port", port).Info("starting server")
	if err := r.Run(":" + port); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

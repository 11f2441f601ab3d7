package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/database"
	"github.com/pageza/recipebox/internal/server"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var deps server.Dependencies

	// Redis only backs the import rate limiter; run without it rather than fail
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(context.Background(), cfg)
		if err != nil {
			log.Printf("Redis unavailable, import rate limiting disabled: %v", err)
		} else {
			defer redisClient.Close()
			deps.Redis = redisClient
		}
	}

	if cfg.S3BucketName != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s3Config, err := config.NewS3Config(ctx, cfg)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		deps.S3 = s3Config
	}

	// Create and start server
	srv := server.New(cfg, db, deps)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	// Gracefully shutdown the server
	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

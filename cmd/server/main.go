package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"osm-relatify/internal/database"
	"osm-relatify/internal/routing"
	"osm-relatify/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	appConfig, err := database.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := routing.Options{
		PoolSize:        getEnvInt("POOL_SIZE", appConfig.PoolSize),
		SyncIterations:  getEnvInt("SYNC_ITERATIONS", appConfig.SyncIterations),
		AsyncIterations: getEnvInt("ASYNC_ITERATIONS", appConfig.AsyncIterations),
	}

	srv, err := server.New(server.Config{
		Addr:         getEnv("SERVER_ADDR", "127.0.0.1:8080"),
		DatabasePath: getEnv("SQLITE_DATABASE", appConfig.DatabasePath),
		Options:      opts,
		CacheSize:    getEnvInt("DISTANCE_CACHE_SIZE", 0),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	actualAddr, err := srv.Start()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	log.Printf("Routing API available at http://%s/api/v1", actualAddr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	log.Printf("Received signal %v, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Printf("Ignoring invalid %s=%q", key, value)
		return defaultValue
	}
	return n
}

// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/falcol/authen-api/config"
	"github.com/falcol/authen-api/db"
	"github.com/falcol/authen-api/handler"
	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/repository"
	"github.com/falcol/authen-api/router"
	"github.com/falcol/authen-api/service"

	"github.com/redis/go-redis/v9"
)

// buildHandler wires repositories, services and handlers into the HTTP
// router. Shared between Run and NewTestApp so tests exercise the same
// object graph as production.
func buildHandler(cfg *config.Config, database *sql.DB, redisClient *redis.Client) (http.Handler, error) {
	userRepo := repository.NewUserRepository(database)

	authService := service.NewAuthService(userRepo)
	tokenService, err := service.NewTokenService(cfg)
	if err != nil {
		return nil, err
	}
	sessionService := service.NewSessionService(authService, tokenService, userRepo, redisClient)
	userService := service.NewUserService(userRepo, authService, redisClient)

	authHandler := handler.NewAuthHandler(sessionService, userService)

	return router.NewRouter(authHandler, sessionService), nil
}

func Run() {
	logger.Init()
	logger.Log.Info("Logger initialized")

	cfg, err := config.Load(".")
	if err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(cfg, "file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	r, err := buildHandler(cfg, database, redisClient)
	if err != nil {
		logger.Log.Fatalf("Error wiring application: %v", err)
	}

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// TestApp exposes the wired router plus its backing stores for tests.
type TestApp struct {
	Handler http.Handler
	DB      *sql.DB
	Redis   *redis.Client
}

// NewTestApp wires the full application around externally managed database
// and Redis connections.
func NewTestApp(cfg *config.Config, database *sql.DB, redisClient *redis.Client) (*TestApp, error) {
	h, err := buildHandler(cfg, database, redisClient)
	if err != nil {
		return nil, err
	}
	return &TestApp{Handler: h, DB: database, Redis: redisClient}, nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/leadvault/leadvault/application/usecase/auth"
	"github.com/leadvault/leadvault/application/usecase/lead"
	"github.com/leadvault/leadvault/infrastructure/adapter/postgres"
	redisadapter "github.com/leadvault/leadvault/infrastructure/adapter/redis"
	"github.com/leadvault/leadvault/infrastructure/config"
	"github.com/leadvault/leadvault/infrastructure/http/handler"
	"github.com/leadvault/leadvault/infrastructure/http/middleware"
	"github.com/leadvault/leadvault/infrastructure/service/jwt"
	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/infrastructure/service/password"
	"github.com/leadvault/leadvault/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "leadvault",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	redisClient, err := redisadapter.Dial(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	structuredLogger.Info(ctx, "Redis connection established", nil)

	// Repositories and services
	buyerRepo := postgres.NewBuyerRepositoryAdapter(db)
	userRepo := postgres.NewUserRepositoryAdapter(db)
	counterStore := redisadapter.NewCounterStoreAdapter(redisClient)

	tokenService, err := jwt.NewService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}
	passwordService := password.NewBcryptService(cfg.BcryptCost)

	limiter := ratelimit.NewService(counterStore, ratelimit.Config{
		Window:         cfg.RateLimitWindow,
		MaxPerOrigin:   cfg.RateLimitMaxPerOrigin,
		MaxPerIdentity: cfg.RateLimitMaxPerIdentity,
	}, structuredLogger)

	// Use cases
	leadUseCase := lead.NewUseCase(buyerRepo, structuredLogger)
	authUseCase := auth.NewUseCase(userRepo, tokenService, passwordService, structuredLogger)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	guard := middleware.NewRateLimitMiddleware(
		limiter,
		authMiddleware,
		userRepo,
		cfg.BootstrapPaths,
		int(cfg.RateLimitWindow.Seconds()),
		structuredLogger,
	)

	leadHandler := handler.NewLeadHandler(leadUseCase)
	authHandler := handler.NewAuthHandler(authUseCase)

	router := mux.NewRouter()
	router.Use(middleware.CorrelationID)

	// Login issues the credential the guard requires, so it stays outside.
	router.HandleFunc("/v1/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := router.PathPrefix("/v1").Subrouter()
	protected.Use(guard.Guard)
	leadHandler.RegisterRoutes(protected)
	protected.HandleFunc("/users", authHandler.ProvisionUser).Methods(http.MethodPost)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy"}`)
	}).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"user-api/internal/config"
	"user-api/internal/db"
	apihttp "user-api/internal/http"
	"user-api/internal/repository"
	"user-api/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	if err := db.RunMigrations(cfg); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	hasher := service.NewPasswordHasher()
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiration)
	userSvc, err := service.NewUserService(logger, userRepo, hasher, jwtSvc, cfg.EmailRegexp, cfg.PasswordRegexp)
	if err != nil {
		logger.Fatal("user service init", zap.Error(err))
	}

	userHandler := apihttp.NewUserHandler(logger, userSvc)
	router := apihttp.NewRouter(logger, userHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

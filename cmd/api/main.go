package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"nbcards/internal/api"
	"nbcards/internal/auth"
	"nbcards/internal/cards"
	"nbcards/internal/config"
	"nbcards/internal/database"
	"nbcards/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()
	logger.Info("api bootstrapped",
		slog.String("db_host", cfg.Database.Host),
		slog.Int("db_port", cfg.Database.Port),
		slog.String("db_name", cfg.Database.Name),
		slog.String("minio_bucket", cfg.MinIO.Bucket),
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		logger.Error("init database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := db.AutoMigrate(&database.BusinessCard{}); err != nil {
		logger.Error("auto migrate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("init storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	authService, err := auth.NewAuthService(cfg.Auth)
	if err != nil {
		logger.Error("init auth", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})

	cardService := cards.NewService(db, storageClient, cfg.API.PublicBaseURL, logger)

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, cardService, authService, redisClient, logger)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))

	if err := router.Run(address); err != nil {
		logger.Error("api server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"log"

	"github.com/choreboard-dev/choreboard/db"
	"github.com/choreboard-dev/choreboard/internal/auth"
	"github.com/choreboard-dev/choreboard/internal/config"
	"github.com/choreboard-dev/choreboard/internal/handlers"
	"github.com/choreboard-dev/choreboard/internal/logger"
	"github.com/choreboard-dev/choreboard/internal/notify"
	"github.com/choreboard-dev/choreboard/internal/router"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	defer zapLogger.Sync()

	if err := auth.Init(cfg.JWTSecret); err != nil {
		zapLogger.Fatal("Failed to initialize auth", zap.Error(err))
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	if err := db.SeedBuildings(); err != nil {
		zapLogger.Fatal("Failed to seed buildings", zap.Error(err))
	}

	hub := notify.NewHub(zapLogger)

	h := handlers.New(db.DB, zapLogger, hub, cfg.AllowedOrigins)

	r := router.NewRouter(h, cfg.AllowedOrigins)

	zapLogger.Info("Starting server", zap.String("port", cfg.Port))

	if err := r.Run(":" + cfg.Port); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}

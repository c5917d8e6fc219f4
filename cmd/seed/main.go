package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/princeprakhar/freelance-backend/internal/config"
	"github.com/princeprakhar/freelance-backend/internal/database"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger.Init()

	cfg := config.Load()

	db, err := database.Init(cfg.DatabaseURL, cfg.Environment == "production")
	if err != nil {
		logger.Fatal("Failed to initialize database: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := services.NewSeedService(db, cfg.SeedPassword).Run(ctx)
	if err != nil {
		logger.Fatal("Seed failed: ", err)
	}
	logger.Infof("Seeded %d skills and %d users", result.Skills, result.Users)

	updated, err := services.NewReputationService(db).RecomputeAll(ctx)
	if err != nil {
		logger.Fatal("Reputation recompute failed: ", err)
	}
	logger.Infof("Recomputed %d reputations", updated)
}

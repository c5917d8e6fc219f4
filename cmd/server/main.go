package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/princeprakhar/freelance-backend/internal/api/routes"
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

	svc, err := routes.NewServices(db, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services: ", err)
	}

	scheduler, err := services.NewReputationScheduler(svc.Reputation, cfg.ReputationSchedule)
	if err != nil {
		logger.Fatal(err)
	}
	scheduler.Start()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed: ", err)
	}
	<-scheduler.Stop().Done()
	svc.Review.Wait()

	logger.Info("Server stopped")
}

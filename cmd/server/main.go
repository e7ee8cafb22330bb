package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raakesh-m/autosendr-backend/docs"
	"github.com/raakesh-m/autosendr-backend/internal/database"
	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/router"
	"github.com/raakesh-m/autosendr-backend/internal/services"
	"github.com/raakesh-m/autosendr-backend/internal/services/auth"
	"github.com/raakesh-m/autosendr-backend/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title AutoSendr API
// @version 1.0
// @description Email outreach backend with AI-assisted personalization and multi-provider API key rotation

// @contact.name API Support

// @license.name MIT

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter `Bearer ` followed by your JWT token (e.g. "Bearer <token>")

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	docs.SwaggerInfo.BasePath = getEnv("BASE_PATH", "/")

	configureLogging()

	utils.InitSentry()

	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	authService := auth.NewAuthService(db)

	if err := authService.CreateAdminUser(); err != nil {
		logrus.Warnf("Failed to create admin user: %v", err)
	}

	keyRepo := repository.NewAIKeyRepository(db)
	prefsRepo := repository.NewAIPreferencesRepository(db)
	aiKeyService := services.NewAIKeyService(keyRepo, prefsRepo)
	aiKeyService.StartDailyResetScheduler()
	defer aiKeyService.StopDailyResetScheduler()

	tracker := services.NewProgressTracker()
	hub := services.NewProgressHub()

	// Broker is optional; campaigns fall back to in-process SSE fan-out only
	rabbitMQService, err := services.NewRabbitMQService()
	if err != nil {
		logrus.Warnf("Failed to initialize RabbitMQ, progress events stay in-process: %v", err)
		rabbitMQService = nil
	} else {
		logrus.Info("RabbitMQ service initialized")
		defer rabbitMQService.Close()
	}

	tokenCleanupService := auth.NewTokenCleanupService(db)
	tokenCleanupService.Start()
	defer tokenCleanupService.Stop()

	r := router.SetupRouter(&router.Dependencies{
		DB:       db,
		AuthSvc:  authService,
		AIKeySvc: aiKeyService,
		Tracker:  tracker,
		Hub:      hub,
		RabbitMQ: rabbitMQService,
	})

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

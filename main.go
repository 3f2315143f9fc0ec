package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"onebooking-backend/config"
	"onebooking-backend/controllers"
	"onebooking-backend/routes"
	"onebooking-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("Database connect failed: %v", err)
	}
	log.Println("Database connection established and migrations applied")

	// Initialize services
	credentialService := services.NewCredentialService(db)
	syncLogService := services.NewSyncLogService(db)
	notificationService := services.NewNotificationService()
	syncService := services.NewSyncService(db, syncLogService, notificationService)
	bookingService := services.NewBookingService(db)
	webhookService := services.NewWebhookService(db, syncLogService)
	websiteService := services.NewWebsiteService(db)

	// Initialize controllers
	syncController := controllers.NewSyncController(credentialService, syncService)
	bookingController := controllers.NewBookingController(bookingService, webhookService)
	websiteController := controllers.NewWebsiteController(websiteService)
	syncLogController := controllers.NewSyncLogController(syncLogService)
	authController := controllers.NewAuthController(db)
	adminController := controllers.NewAdminController(bookingService, webhookService)

	router := routes.SetupRouter(
		syncController,
		bookingController,
		websiteController,
		syncLogController,
		authController,
		adminController,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

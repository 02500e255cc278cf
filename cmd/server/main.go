package main

import (
	"context"
	"fmt"
	"log"
	"marketplace/internal/api"
	"marketplace/internal/app/service"
	"marketplace/internal/common/security"
	"marketplace/internal/domain/repository"
	"marketplace/internal/platform/cache"
	"marketplace/internal/platform/config"
	"marketplace/internal/platform/database"
	"marketplace/internal/platform/payment"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	postRepo := repository.NewPgPostRepository(database.DB)
	paymentRepo := repository.NewPgPaymentRepository(database.DB)
	notificationRepo := repository.NewPgNotificationRepository(database.DB)

	// 6. Checkout provider (nil when no credentials are configured; the
	// checkout endpoints then fail with a distinct error).
	var provider payment.CheckoutProvider
	if config.AppConfig.StripeSecretKey != "" {
		provider = payment.NewStripeProvider(
			config.AppConfig.StripeSecretKey,
			config.AppConfig.StripePublishableKey,
		)
		fmt.Println("Checkout provider configured.")
	} else {
		log.Println("STRIPE_SECRET_KEY not set; hosted checkout disabled")
	}

	sessionLock := cache.NewSessionLock(
		cache.RDB,
		time.Duration(config.AppConfig.ConfirmLockTTLSeconds)*time.Second,
	)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	postService := service.NewPostService(postRepo)
	paymentService := service.NewPaymentService(paymentRepo, notificationRepo, postRepo, provider, sessionLock, database.DB)
	notificationService := service.NewNotificationService(notificationRepo)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, postService, paymentService, notificationService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}

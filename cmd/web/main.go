package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"wishwall/internal/config"
	"wishwall/internal/database"
	"wishwall/internal/handlers"
	"wishwall/internal/repository"
	"wishwall/internal/services"
	"wishwall/internal/storage"
	"wishwall/pkg/logger"
	"wishwall/pkg/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Client().Disconnect(context.Background())

	blobs, err := storage.New(cfg.StorageBackend, cfg.UploadDir, db)
	if err != nil {
		log.Fatalf("Blob store error: %v", err)
	}

	wishRepo := repository.NewWishRepository(db)
	// The public side never submits or decides, so it runs without a notifier.
	moderationService := services.NewModerationService(wishRepo, blobs, nil)
	wishHandler := handlers.NewWishHandler(moderationService, blobs)

	router := mux.NewRouter()
	router.HandleFunc("/api/wishes", wishHandler.ListWishesHandler).Methods("GET")
	router.HandleFunc("/uploads/{ref}", wishHandler.WishImageHandler).Methods("GET")
	router.HandleFunc("/", wishHandler.IndexHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"wishwall/internal/config"
	"wishwall/internal/database"
	"wishwall/internal/gateway"
	"wishwall/internal/repository"
	"wishwall/internal/services"
	"wishwall/internal/storage"
	"wishwall/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	if cfg.AdminChatID == 0 {
		log.Fatal("ADMIN_CHAT_ID is required")
	}

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

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Telegram connection error: %v", err)
	}

	wishRepo := repository.NewWishRepository(db)
	notifier := gateway.NewNotifier(bot)
	moderationService := services.NewModerationService(wishRepo, blobs, notifier)
	gw := gateway.New(bot, moderationService, cfg.AdminChatID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot stopped: %v", err)
	}
	logger.Log.Info("Bot shut down")
}

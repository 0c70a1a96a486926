package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/config"
	"github.com/nsokolov/studypulse-bot/internal/delivery/telegram"
	"github.com/nsokolov/studypulse-bot/internal/dialog"
	"github.com/nsokolov/studypulse-bot/internal/infra/postgres"
	"github.com/nsokolov/studypulse-bot/internal/infra/postgres/repository"
	"github.com/nsokolov/studypulse-bot/internal/logger"
	"github.com/nsokolov/studypulse-bot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
		MaxConns:        cfg.DB.MaxConnections,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zl.Fatal("failed to create bot", zap.Error(err))
	}
	zl.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "interests", Description: "Выбрать интересы"},
		{Command: "reminder", Description: "Настроить напоминания"},
		{Command: "progress", Description: "Статистика занятий"},
		{Command: "config", Description: "Настройки"},
		{Command: "cancel", Description: "Отменить текущий диалог"},
		{Command: "help", Description: "Помощь"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zl.Warn("failed to set bot commands", zap.Error(err))
	}

	transactor := postgres.NewTransactor(pool)

	userRepo := repository.NewUserRepository(pool)
	interestRepo := repository.NewInterestRepository(pool, transactor)
	reminderRepo := repository.NewReminderRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)

	userService := service.NewUserService(userRepo, zl)
	interestService := service.NewInterestService(interestRepo, service.DefaultCatalog, zl)
	reminderService := service.NewReminderService(reminderRepo, zl)
	progressService := service.NewProgressService(progressRepo, zl)

	registry := dialog.NewRegistry()

	handler := telegram.NewHandler(
		bot,
		zl,
		userService,
		interestService,
		reminderService,
		progressService,
		registry,
	)

	scheduler := service.NewScheduler(reminderRepo, registry, handler, zl)
	go scheduler.Start(ctx)

	if err := handler.Run(ctx); err != nil && ctx.Err() == nil {
		zl.Error("telegram handler failed", zap.Error(err))
	}

	zl.Info("shutdown signal received")
}

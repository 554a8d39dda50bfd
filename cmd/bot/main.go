package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/config"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/delivery/telegram"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/health"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/logger"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/repository"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/service"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/storage"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zl.Fatal("failed to create bot api", zap.Error(err))
	}

	zl.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Начать тест",
		},
		{
			Command:     "restart",
			Description: "Начать тест заново",
		},
		{
			Command:     "help",
			Description: "Помощь",
		},
	}

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zl.Warn("failed to set bot commands", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bank, usedReserve, err := repository.NewQuestionRepository(cfg.QuestionsJSONPath)
	if err != nil {
		zl.Fatal("failed to load question bank", zap.Error(err))
	}
	if usedReserve {
		zl.Warn("question bank asset missing, using reserve questions",
			zap.String("path", cfg.QuestionsJSONPath),
			zap.Int("count", bank.Count()),
		)
	} else {
		zl.Info("question bank loaded", zap.Int("count", bank.Count()))
	}

	store := storage.NewSessionStore()
	presenter := telegram.NewPresenter(bot, zl)

	engine := service.NewEngine(bank, store, presenter, zl, service.Config{
		QuestionCount: cfg.Quiz.QuestionCount,
		Deadline:      cfg.Quiz.Deadline,
		CleanupDelay:  cfg.Quiz.CleanupDelay,
		Policy:        service.RewardPolicy(cfg.Quiz.RewardPolicy),
	})

	janitor := service.NewJanitor(store, cfg.Quiz.SessionTTL, zl)
	go janitor.Start(ctx)

	if cfg.Health.Addr != "" {
		go health.New(cfg.Health.Addr, zl).Start(ctx)
	}

	handler := telegram.NewHandler(bot, zl, engine)
	if err := handler.Run(ctx); err != nil && ctx.Err() == nil {
		zl.Fatal("handler stopped", zap.Error(err))
	}

	zl.Info("shutdown signal received")
}

package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// QuizEngine is the part of the transition engine the handler drives.
type QuizEngine interface {
	Start(ctx context.Context, userID, chatID int64)
	Answer(ctx context.Context, userID, chatID int64, token string)
	Advance(ctx context.Context, userID, chatID int64)
}

type Handler struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
	engine QuizEngine
}

func NewHandler(bot *tgbotapi.BotAPI, logger *zap.Logger, engine QuizEngine) *Handler {
	return &Handler{
		bot:    bot,
		logger: logger,
		engine: engine,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start", "restart":
			h.engine.Start(ctx, userID, chatID)

		case "help":
			h.send(tgbotapi.NewMessage(chatID, msgHelp))

		default:
			h.send(tgbotapi.NewMessage(chatID, msgUnknownCommand))
		}

		return
	}

	h.send(tgbotapi.NewMessage(chatID, msgUseButtons))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

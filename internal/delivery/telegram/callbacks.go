package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Remove the user's "clock" first; the engine may take its time.
	answer := tgbotapi.NewCallback(cb.ID, "")
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Error("callback answer error", zap.Error(err))
	}

	if cb.Message == nil {
		h.logger.Debug("callback without message", zap.String("data", cb.Data))
		return
	}

	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, answerCallbackPrefix):
		token := strings.TrimPrefix(cb.Data, answerCallbackPrefix)
		h.engine.Answer(ctx, userID, chatID, token)

	case cb.Data == advanceCallbackData:
		h.engine.Advance(ctx, userID, chatID)

	default:
		h.logger.Debug("unknown callback data", zap.String("data", cb.Data))
	}
}

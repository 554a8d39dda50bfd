package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/service"
)

const (
	answerCallbackPrefix = "ans:"
	advanceCallbackData  = "next"
)

// Presenter delivers engine effects to Telegram. Follow-up questions edit
// the previous question message in place; when the edit fails (the message
// was deleted, or it is the very first question) a fresh message is sent.
type Presenter struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger

	mu      sync.Mutex
	lastMsg map[int64]int // chat id -> message id of the last question message
}

// NewPresenter creates a Telegram presenter.
func NewPresenter(bot *tgbotapi.BotAPI, logger *zap.Logger) *Presenter {
	return &Presenter{
		bot:     bot,
		logger:  logger,
		lastMsg: make(map[int64]int),
	}
}

// DeliverQuestion shows the question with one inline button per option.
func (p *Presenter) DeliverQuestion(_ context.Context, chatID int64, view service.QuestionView, first bool) error {
	kb := buildOptionsKeyboard(view.Options)

	if first {
		return p.sendQuestion(chatID, formatFirstQuestion(view), kb)
	}

	msgID, ok := p.lastMessageID(chatID)
	if ok {
		edit := tgbotapi.NewEditMessageText(chatID, msgID, formatNextQuestion(view))
		edit.ReplyMarkup = &kb
		_, err := p.bot.Send(edit)
		if err == nil {
			return nil
		}
		// The question message may have been deleted by the user.
		p.logger.Debug("question edit failed, sending a fresh message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}

	return p.sendQuestion(chatID, formatFallbackQuestion(view), kb)
}

// DeliverFeedback shows the explanation for a wrong answer together with
// the button that advances to the next question.
func (p *Presenter) DeliverFeedback(_ context.Context, chatID int64, explanation string) error {
	kb := buildAdvanceKeyboard()

	if msgID, ok := p.lastMessageID(chatID); ok {
		edit := tgbotapi.NewEditMessageText(chatID, msgID, formatWrongFeedback(explanation))
		edit.ReplyMarkup = &kb
		if _, err := p.bot.Send(edit); err == nil {
			return nil
		}
	}

	msg := tgbotapi.NewMessage(chatID, formatWrongFeedback(explanation))
	msg.ReplyMarkup = kb
	sent, err := p.bot.Send(msg)
	if err != nil {
		return err
	}
	p.rememberMessage(chatID, sent.MessageID)
	return nil
}

// DeliverResults sends the final score and forgets the question message.
func (p *Presenter) DeliverResults(_ context.Context, chatID int64, results entities.Results) error {
	p.mu.Lock()
	delete(p.lastMsg, chatID)
	p.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, formatResults(results))
	_, err := p.bot.Send(msg)
	return err
}

// ReportRejected tells the user why their action was ignored.
func (p *Presenter) ReportRejected(_ context.Context, chatID int64, reason service.RejectReason) error {
	msg := tgbotapi.NewMessage(chatID, rejectionText(reason))
	_, err := p.bot.Send(msg)
	return err
}

func (p *Presenter) sendQuestion(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb

	sent, err := p.bot.Send(msg)
	if err != nil {
		return err
	}

	p.rememberMessage(chatID, sent.MessageID)
	return nil
}

func (p *Presenter) lastMessageID(chatID int64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.lastMsg[chatID]
	return id, ok
}

func (p *Presenter) rememberMessage(chatID int64, msgID int) {
	p.mu.Lock()
	p.lastMsg[chatID] = msgID
	p.mu.Unlock()
}

// buildOptionsKeyboard lays the answer options out one per row so long
// option texts stay readable.
func buildOptionsKeyboard(options []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for i, option := range options {
		data := fmt.Sprintf("%s%d", answerCallbackPrefix, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildAdvanceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Дальше ➡️", advanceCallbackData),
		),
	)
}

// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/service"
)

const (
	msgQuizNotStarted  = "Тест не начат. Напиши /start"
	msgQuizFinished    = "Тест уже завершён. Напиши /start, чтобы пройти ещё раз."
	msgTimeExpired     = "⏰ Время вышло. Тест завершён."
	msgAlreadyAnswered = "Вы уже ответили на этот вопрос. Нажмите «Дальше ➡️»."
	msgAwaitingAnswer  = "Сначала выберите ответ на текущий вопрос."
	msgMalformedInput  = "Ошибка при обработке ответа."
	msgNextQuestion    = "Следующий вопрос:"
	msgAnswerAccepted  = "✅ Ответ засчитан."
	msgHelp            = "Я бот-викторина.\n\n/start — начать тест\n/restart — начать заново\n/help — помощь\n\nОтвечайте на вопросы кнопками под сообщением."
	msgUnknownCommand  = "Неизвестная команда. Напиши /start, чтобы начать тест, или /help для справки."
	msgUseButtons      = "Используйте кнопки под вопросом, чтобы ответить. Напиши /start, чтобы начать тест."
)

// rejectionText maps an engine rejection to the user-facing wording.
func rejectionText(reason service.RejectReason) string {
	switch reason {
	case service.ReasonNoSession:
		return msgQuizNotStarted
	case service.ReasonMalformedInput:
		return msgMalformedInput
	case service.ReasonAlreadyAnswered:
		return msgAlreadyAnswered
	case service.ReasonAwaitingAnswer:
		return msgAwaitingAnswer
	case service.ReasonQuizFinished:
		return msgQuizFinished
	case service.ReasonTimeExpired:
		return msgTimeExpired
	default:
		return msgQuizNotStarted
	}
}

// formatFirstQuestion builds the opening message with the time limit and
// quiz length.
func formatFirstQuestion(view service.QuestionView) string {
	var b strings.Builder

	if view.TimeLimit > 0 {
		b.WriteString(fmt.Sprintf("⏱ У тебя %d секунд! ", int(view.TimeLimit.Seconds())))
	}
	b.WriteString(fmt.Sprintf("Всего вопросов: %d", view.Total))
	b.WriteString("\n\n")
	b.WriteString(formatPrompt(view))

	return b.String()
}

// formatNextQuestion builds the edited message shown after a scored answer.
func formatNextQuestion(view service.QuestionView) string {
	return msgAnswerAccepted + "\n\n" + formatPrompt(view)
}

// formatFallbackQuestion builds a fresh message when editing the previous
// one failed.
func formatFallbackQuestion(view service.QuestionView) string {
	return msgNextQuestion + "\n\n" + formatPrompt(view)
}

func formatPrompt(view service.QuestionView) string {
	return fmt.Sprintf("❓ Вопрос %d/%d\n\n%s", view.Number, view.Total, view.Prompt)
}

// formatWrongFeedback builds the explanation message under the strict policy.
func formatWrongFeedback(explanation string) string {
	if explanation == "" {
		return "❌ Неверно."
	}
	return "❌ Неверно.\n\n" + explanation
}

// formatResults builds the final score message with elapsed time and a
// qualitative band by percentage correct.
func formatResults(r entities.Results) string {
	minutes := int(r.Elapsed.Minutes())
	seconds := int(r.Elapsed.Seconds()) % 60

	var b strings.Builder
	b.WriteString("🏁 Тест завершён!\n\n")
	b.WriteString(fmt.Sprintf("Задано вопросов: %d\n", r.Total))
	b.WriteString(fmt.Sprintf("Правильных ответов: %d ✅\n", r.Correct))
	b.WriteString(fmt.Sprintf("Время: %d мин %d сек\n\n", minutes, seconds))
	b.WriteString(resultBand(r))

	return b.String()
}

func resultBand(r entities.Results) string {
	if r.Total == 0 {
		return "В этот раз не успел ответить ни на один вопрос. Попробуй ещё раз!"
	}

	percent := r.Correct * 100 / r.Total
	switch {
	case percent >= 80:
		return "Отличный результат! 🎉"
	case percent >= 50:
		return "Хороший результат! 👍"
	default:
		return "Есть куда расти. Попробуй ещё раз! 💪"
	}
}

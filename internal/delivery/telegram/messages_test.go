package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/service"
)

func TestFormatFirstQuestionMentionsTimeLimit(t *testing.T) {
	view := service.QuestionView{
		Number:    1,
		Total:     10,
		Prompt:    "Сколько будет 2 + 2?",
		Options:   []string{"3", "4"},
		TimeLimit: 100 * time.Second,
	}

	text := formatFirstQuestion(view)
	if !strings.Contains(text, "100 секунд") {
		t.Fatalf("time limit missing: %q", text)
	}
	if !strings.Contains(text, "Всего вопросов: 10") {
		t.Fatalf("question count missing: %q", text)
	}
	if !strings.Contains(text, view.Prompt) {
		t.Fatalf("prompt missing: %q", text)
	}
}

func TestFormatFirstQuestionWithoutDeadline(t *testing.T) {
	view := service.QuestionView{Number: 1, Total: 5, Prompt: "q", Options: []string{"a", "b"}}

	text := formatFirstQuestion(view)
	if strings.Contains(text, "секунд!") {
		t.Fatalf("deadline mentioned without a limit: %q", text)
	}
}

func TestFormatResultsElapsedTime(t *testing.T) {
	text := formatResults(entities.Results{
		Correct: 7,
		Total:   10,
		Elapsed: 95 * time.Second,
	})

	if !strings.Contains(text, "1 мин 35 сек") {
		t.Fatalf("elapsed time not formatted as minutes and seconds: %q", text)
	}
	if !strings.Contains(text, "Правильных ответов: 7") {
		t.Fatalf("correct count missing: %q", text)
	}
	if !strings.Contains(text, "Задано вопросов: 10") {
		t.Fatalf("total missing: %q", text)
	}
}

func TestResultBands(t *testing.T) {
	cases := []struct {
		correct, total int
		want           string
	}{
		{9, 10, "Отличный"},
		{5, 10, "Хороший"},
		{2, 10, "Есть куда расти"},
		{0, 0, "не успел"},
	}

	for _, tc := range cases {
		got := resultBand(entities.Results{Correct: tc.correct, Total: tc.total})
		if !strings.Contains(got, tc.want) {
			t.Fatalf("%d/%d: expected band containing %q, got %q", tc.correct, tc.total, tc.want, got)
		}
	}
}

func TestRejectionTextCoversAllReasons(t *testing.T) {
	reasons := []service.RejectReason{
		service.ReasonNoSession,
		service.ReasonMalformedInput,
		service.ReasonAlreadyAnswered,
		service.ReasonAwaitingAnswer,
		service.ReasonQuizFinished,
		service.ReasonTimeExpired,
	}

	seen := make(map[string]service.RejectReason, len(reasons))
	for _, reason := range reasons {
		text := rejectionText(reason)
		if text == "" {
			t.Fatalf("empty text for reason %s", reason)
		}
		if prev, dup := seen[text]; dup {
			t.Fatalf("reasons %s and %s share text %q", prev, reason, text)
		}
		seen[text] = reason
	}
}

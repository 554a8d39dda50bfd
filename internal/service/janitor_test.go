package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/storage"
)

func TestSweepRemovesIdleSessions(t *testing.T) {
	store := storage.NewSessionStore()
	janitor := NewJanitor(store, 30*time.Millisecond, zap.NewNop())

	store.Create(1, entities.NewQuizSession(1, 100, sampleBankQuestions(2), 0))
	active := store.Create(2, entities.NewQuizSession(2, 200, sampleBankQuestions(2), 0))

	time.Sleep(50 * time.Millisecond)
	active.Touch()

	janitor.sweep()

	if _, ok := store.Get(1); ok {
		t.Fatal("idle session survived the sweep")
	}
	if _, ok := store.Get(2); !ok {
		t.Fatal("active session was swept")
	}
}

func TestSweepKeepsRecentSessions(t *testing.T) {
	store := storage.NewSessionStore()
	janitor := NewJanitor(store, time.Minute, zap.NewNop())

	store.Create(1, entities.NewQuizSession(1, 100, sampleBankQuestions(2), 0))

	janitor.sweep()

	if _, ok := store.Get(1); !ok {
		t.Fatal("fresh session was swept")
	}
}

func sampleBankQuestions(n int) []entities.Question {
	questions := make([]entities.Question, n)
	for i := range questions {
		questions[i] = entities.Question{
			ID:           i + 1,
			Prompt:       "q",
			Options:      []string{"a", "b"},
			CorrectIndex: 0,
		}
	}
	return questions
}

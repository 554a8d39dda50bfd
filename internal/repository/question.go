package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
)

var ErrEmptyBank = errors.New("question bank is empty")

// QuestionRepository provides read access to the static question bank.
// The bank is loaded once at startup and never mutated afterwards, so
// concurrent sampling from many user streams needs no locking.
type QuestionRepository struct {
	questions []entities.Question
}

// NewQuestionRepository loads the bank from a JSON file. When the file is
// missing the embedded reserve set is used instead, so the bot stays usable
// without the full bank deployed.
func NewQuestionRepository(path string) (*QuestionRepository, bool, error) {
	questions, err := loadQuestions(path)
	usedReserve := false
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
		questions = reserveQuestions()
		usedReserve = true
	}

	if len(questions) == 0 {
		return nil, false, ErrEmptyBank
	}

	return &QuestionRepository{
		questions: questions,
	}, usedReserve, nil
}

// Count returns the bank size.
func (r *QuestionRepository) Count() int {
	return len(r.questions)
}

// All returns every question in bank order.
func (r *QuestionRepository) All() []entities.Question {
	return r.questions
}

// Sample returns n random questions without replacement. When the bank is
// smaller than n the whole bank is returned in random order; a short bank is
// a degraded mode, not an error.
func (r *QuestionRepository) Sample(n int) []entities.Question {
	shuffled := make([]entities.Question, len(r.questions))
	copy(shuffled, r.questions)

	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n <= 0 || n > len(shuffled) {
		n = len(shuffled)
	}

	return shuffled[:n]
}

func loadQuestions(path string) ([]entities.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Questions []entities.Question `json:"questions"`
	}
	if err = json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions JSON: %w", err)
	}

	for i := range wrapper.Questions {
		wrapper.Questions[i].ID = i + 1
		if err := wrapper.Questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	return wrapper.Questions, nil
}

// reserveQuestions is the fallback set used when the bank asset is missing.
func reserveQuestions() []entities.Question {
	return []entities.Question{
		{
			ID:           1,
			Prompt:       "Сколько будет 2 + 2?",
			Options:      []string{"3", "4", "5", "6"},
			CorrectIndex: 1,
		},
		{
			ID:           2,
			Prompt:       "Столица Франции?",
			Options:      []string{"Лондон", "Берлин", "Париж", "Мадрид"},
			CorrectIndex: 2,
		},
		{
			ID:           3,
			Prompt:       "Какой язык программирования используется для веба?",
			Options:      []string{"Python", "Java", "C++", "JavaScript"},
			CorrectIndex: 3,
		},
		{
			ID:           4,
			Prompt:       "Сколько планет в Солнечной системе?",
			Options:      []string{"7", "8", "9", "10"},
			CorrectIndex: 1,
		},
		{
			ID:           5,
			Prompt:       "Какой газ мы вдыхаем?",
			Options:      []string{"Углекислый", "Азот", "Кислород", "Гелий"},
			CorrectIndex: 2,
		},
	}
}

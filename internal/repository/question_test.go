package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
)

func writeBank(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validBank = `{
  "questions": [
    {"question": "q1", "options": ["a", "b", "c"], "correct": 0},
    {"question": "q2", "options": ["a", "b"], "correct": 1},
    {"question": "q3", "options": ["a", "b", "c", "d"], "correct": 3}
  ]
}`

func TestLoadBankFromFile(t *testing.T) {
	repo, usedReserve, err := NewQuestionRepository(writeBank(t, validBank))
	if err != nil {
		t.Fatal(err)
	}
	if usedReserve {
		t.Fatal("reserve set used despite a valid file")
	}
	if repo.Count() != 3 {
		t.Fatalf("expected 3 questions, got %d", repo.Count())
	}

	// IDs are assigned by bank position.
	for i, q := range repo.All() {
		if q.ID != i+1 {
			t.Fatalf("question %d has id %d", i, q.ID)
		}
	}
}

func TestMissingFileFallsBackToReserve(t *testing.T) {
	repo, usedReserve, err := NewQuestionRepository(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !usedReserve {
		t.Fatal("expected reserve fallback for a missing file")
	}
	if repo.Count() == 0 {
		t.Fatal("reserve set is empty")
	}
	for _, q := range repo.All() {
		if err := q.Validate(); err != nil {
			t.Fatalf("reserve question %d invalid: %v", q.ID, err)
		}
	}
}

func TestInvalidBankIsRejected(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "correct index out of range",
			content: `{"questions": [{"question": "q", "options": ["a", "b"], "correct": 2}]}`,
			wantErr: entities.ErrCorrectOutOfRange,
		},
		{
			name:    "too few options",
			content: `{"questions": [{"question": "q", "options": ["a"], "correct": 0}]}`,
			wantErr: entities.ErrTooFewOptions,
		},
		{
			name:    "too many options",
			content: `{"questions": [{"question": "q", "options": ["a","b","c","d","e"], "correct": 0}]}`,
			wantErr: entities.ErrTooManyOptions,
		},
		{
			name:    "empty prompt",
			content: `{"questions": [{"question": "", "options": ["a","b"], "correct": 0}]}`,
			wantErr: entities.ErrEmptyPrompt,
		},
		{
			name:    "empty bank",
			content: `{"questions": []}`,
			wantErr: ErrEmptyBank,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := NewQuestionRepository(writeBank(t, tc.content))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMalformedJSONIsAnError(t *testing.T) {
	_, _, err := NewQuestionRepository(writeBank(t, "{not json"))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	repo, _, err := NewQuestionRepository(writeBank(t, validBank))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		sample := repo.Sample(2)
		if len(sample) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(sample))
		}
		seen := make(map[int]bool, len(sample))
		for _, q := range sample {
			if seen[q.ID] {
				t.Fatalf("duplicate question %d in sample", q.ID)
			}
			seen[q.ID] = true
		}
	}
}

func TestSampleClampsToBankSize(t *testing.T) {
	repo, _, err := NewQuestionRepository(writeBank(t, validBank))
	if err != nil {
		t.Fatal(err)
	}

	if got := len(repo.Sample(10)); got != 3 {
		t.Fatalf("expected the whole bank (3), got %d", got)
	}
	if got := len(repo.Sample(0)); got != 3 {
		t.Fatalf("expected the whole bank for n=0, got %d", got)
	}
}

func TestSampleDoesNotMutateBank(t *testing.T) {
	repo, _, err := NewQuestionRepository(writeBank(t, validBank))
	if err != nil {
		t.Fatal(err)
	}

	before := make([]int, 0, repo.Count())
	for _, q := range repo.All() {
		before = append(before, q.ID)
	}

	for i := 0; i < 10; i++ {
		repo.Sample(3)
	}

	for i, q := range repo.All() {
		if q.ID != before[i] {
			t.Fatal("sampling reordered the bank")
		}
	}
}

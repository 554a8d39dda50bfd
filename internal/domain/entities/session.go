package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the explicit state of a quiz session. Every transition
// checks the current state first, so an event arriving in the wrong state
// is rejected instead of silently corrupting counters.
type SessionState string

const (
	StateAwaitingAnswer     SessionState = "awaiting_answer"     // a question is shown, waiting for a pick
	StateShowingExplanation SessionState = "showing_explanation" // strict policy: wrong answer, explanation shown
	StateCompleted          SessionState = "completed"           // all questions answered
	StateTimedOut           SessionState = "timed_out"           // deadline fired before the last question
)

// QuizSession tracks a single user's progress through a sampled question list.
// One session per user; a restart replaces it wholesale.
type QuizSession struct {
	ID           string       // uuid for log correlation
	UserID       int64        // Telegram user the session belongs to
	ChatID       int64        // chat to deliver questions and results to
	Questions    []Question   // sampled questions, fixed length for the session lifetime
	Index        int          // position of the next unanswered question, 0..len(Questions)
	CorrectCount int          // right answers so far, never exceeds Index
	State        SessionState
	StartedAt    time.Time
	Deadline     time.Time // zero when no deadline is configured
}

// NewQuizSession creates a fresh session over the given questions.
// deadline of zero duration means the quiz has no time limit.
func NewQuizSession(userID, chatID int64, questions []Question, deadline time.Duration) *QuizSession {
	s := &QuizSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChatID:    chatID,
		Questions: questions,
		State:     StateAwaitingAnswer,
		StartedAt: time.Now(),
	}
	if deadline > 0 {
		s.Deadline = s.StartedAt.Add(deadline)
	}
	return s
}

// Total returns the number of questions in the session.
func (s *QuizSession) Total() int {
	return len(s.Questions)
}

// Current returns the question at the session cursor.
// Valid only while Index < Total.
func (s *QuizSession) Current() *Question {
	return &s.Questions[s.Index]
}

// Terminal reports whether the session reached a final state.
func (s *QuizSession) Terminal() bool {
	return s.State == StateCompleted || s.State == StateTimedOut
}

// Complete marks the session finished after the last question.
func (s *QuizSession) Complete() {
	s.State = StateCompleted
}

// TimeOut marks the session force-terminated by the deadline.
func (s *QuizSession) TimeOut() {
	s.State = StateTimedOut
}

// Results computes the final score. A timed out session reports the number
// of questions actually presented, not the configured quiz length.
func (s *QuizSession) Results() Results {
	total := s.Total()
	if s.State == StateTimedOut {
		total = s.Index
	}
	return Results{
		Correct: s.CorrectCount,
		Total:   total,
		Elapsed: time.Since(s.StartedAt),
	}
}

// Results is the final score reported to the user.
type Results struct {
	Correct int
	Total   int
	Elapsed time.Duration
}

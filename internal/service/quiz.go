package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
	"github.com/iGoriLLapshin/telegram-bot-test/internal/storage"
)

// RewardPolicy selects how a wrong answer is handled.
type RewardPolicy string

const (
	// PolicyLenient advances to the next question on any answer; correctness
	// only affects the score.
	PolicyLenient RewardPolicy = "lenient"
	// PolicyStrict keeps the cursor on a wrongly answered question, shows the
	// explanation and waits for an explicit "next" before moving on.
	PolicyStrict RewardPolicy = "strict"
)

// RejectReason classifies why an inbound event was ignored. Rejections never
// mutate session state.
type RejectReason string

const (
	ReasonNoSession       RejectReason = "no_session"       // no active quiz for the user
	ReasonMalformedInput  RejectReason = "malformed_input"  // answer token does not select a valid option
	ReasonAlreadyAnswered RejectReason = "already_answered" // answer while the explanation is shown
	ReasonAwaitingAnswer  RejectReason = "awaiting_answer"  // advance while a question is still open
	ReasonQuizFinished    RejectReason = "quiz_finished"    // event after normal completion
	ReasonTimeExpired     RejectReason = "time_expired"     // event after the deadline fired
)

// QuestionView is the presentation-ready shape of the current question.
type QuestionView struct {
	Number    int           // 1-based question number
	Total     int           // questions in this session
	Prompt    string
	Options   []string
	TimeLimit time.Duration // overall quiz deadline, zero when unlimited
}

// Presenter delivers outbound effects to the user. Implementations report
// transport problems through the returned error; the engine logs them and
// never rolls a transition back.
//
// Feedback for a correct answer rides on the next question's header, so
// DeliverFeedback only carries the wrong-answer explanation.
type Presenter interface {
	DeliverQuestion(ctx context.Context, chatID int64, view QuestionView, first bool) error
	DeliverFeedback(ctx context.Context, chatID int64, explanation string) error
	DeliverResults(ctx context.Context, chatID int64, results entities.Results) error
	ReportRejected(ctx context.Context, chatID int64, reason RejectReason) error
}

// QuestionBank supplies the sampled question list for a new session.
type QuestionBank interface {
	Sample(n int) []entities.Question
	Count() int
}

// SessionStore is the per-user session mapping the engine operates on.
type SessionStore interface {
	Create(userID int64, session *entities.QuizSession) *storage.Entry
	Get(userID int64) (*storage.Entry, bool)
	DeleteIf(userID int64, entry *storage.Entry) bool
	Contains(userID int64, entry *storage.Entry) bool
}

// Config is the tunable surface of the engine.
type Config struct {
	QuestionCount int           // requested quiz length, clamped to the bank size
	Deadline      time.Duration // overall time limit, zero disables the timer
	CleanupDelay  time.Duration // grace before a timed out session is deleted
	Policy        RewardPolicy
}

// Engine applies quiz events to per-user sessions. Each event is processed
// to completion under the session's own lock; the engine holds nothing
// waiting between events.
type Engine struct {
	bank      QuestionBank
	store     SessionStore
	presenter Presenter
	logger    *zap.Logger
	cfg       Config
}

// NewEngine creates the transition engine.
func NewEngine(
	bank QuestionBank,
	store SessionStore,
	presenter Presenter,
	logger *zap.Logger,
	cfg Config,
) *Engine {
	if cfg.Policy == "" {
		cfg.Policy = PolicyLenient
	}
	return &Engine{
		bank:      bank,
		store:     store,
		presenter: presenter,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start begins a fresh quiz for the user, discarding any previous session.
// A restart is the same operation: no state carries over.
func (e *Engine) Start(ctx context.Context, userID, chatID int64) {
	questions := e.bank.Sample(e.cfg.QuestionCount)
	session := entities.NewQuizSession(userID, chatID, questions, e.cfg.Deadline)

	entry := e.store.Create(userID, session)
	entry.Lock()
	defer entry.Unlock()

	e.logger.Info("quiz started",
		zap.Int64("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Int("questions", session.Total()),
	)

	e.deliver(e.presenter.DeliverQuestion(ctx, chatID, e.viewLocked(session), true),
		"deliver first question", session)

	if e.cfg.Deadline > 0 {
		entry.SetDeadlineTimer(time.AfterFunc(e.cfg.Deadline, func() {
			e.fireTimeout(userID, entry)
		}))
	}
}

// Answer scores the user's pick for the current question. The token comes
// straight from the platform callback and must parse to a valid option index;
// anything else is rejected without touching the session.
func (e *Engine) Answer(ctx context.Context, userID, chatID int64, token string) {
	entry, ok := e.store.Get(userID)
	if !ok {
		e.reject(ctx, chatID, ReasonNoSession, userID)
		return
	}

	entry.Lock()
	defer entry.Unlock()

	if !e.store.Contains(userID, entry) {
		e.reject(ctx, chatID, ReasonNoSession, userID)
		return
	}

	session := entry.Session
	if reason, ok := staleReason(session); ok {
		e.reject(ctx, chatID, reason, userID)
		return
	}

	question := session.Current()
	chosen, err := strconv.Atoi(token)
	if err != nil || chosen < 0 || chosen >= len(question.Options) {
		e.reject(ctx, chatID, ReasonMalformedInput, userID)
		return
	}

	entry.Touch()
	correct := question.IsCorrect(chosen)

	if e.cfg.Policy == PolicyStrict && !correct {
		session.State = entities.StateShowingExplanation
		e.deliver(e.presenter.DeliverFeedback(ctx, session.ChatID, question.Explanation),
			"deliver feedback", session)
		return
	}

	if correct {
		session.CorrectCount++
	}
	session.Index++
	e.afterAdvanceLocked(ctx, entry)
}

// Advance moves past a wrongly answered question once the explanation has
// been shown. Only meaningful under the strict policy.
func (e *Engine) Advance(ctx context.Context, userID, chatID int64) {
	entry, ok := e.store.Get(userID)
	if !ok {
		e.reject(ctx, chatID, ReasonNoSession, userID)
		return
	}

	entry.Lock()
	defer entry.Unlock()

	if !e.store.Contains(userID, entry) {
		e.reject(ctx, chatID, ReasonNoSession, userID)
		return
	}

	session := entry.Session
	switch session.State {
	case entities.StateShowingExplanation:
	case entities.StateAwaitingAnswer:
		e.reject(ctx, chatID, ReasonAwaitingAnswer, userID)
		return
	case entities.StateCompleted:
		e.reject(ctx, chatID, ReasonQuizFinished, userID)
		return
	case entities.StateTimedOut:
		e.reject(ctx, chatID, ReasonTimeExpired, userID)
		return
	default:
		return
	}

	entry.Touch()
	session.Index++
	session.State = entities.StateAwaitingAnswer
	e.afterAdvanceLocked(ctx, entry)
}

// Timeout force-terminates the user's session if it is still running.
// Normally invoked by the deadline timer; exposed for the deadline event
// itself to be testable.
func (e *Engine) Timeout(userID int64) {
	entry, ok := e.store.Get(userID)
	if !ok {
		return
	}
	e.fireTimeout(userID, entry)
}

func (e *Engine) fireTimeout(userID int64, entry *storage.Entry) {
	entry.Lock()
	defer entry.Unlock()

	// The timer may outlive a restart or fire concurrently with the last
	// answer; a session that already terminated gets no second result.
	if !e.store.Contains(userID, entry) {
		return
	}
	session := entry.Session
	if session.Terminal() {
		return
	}

	session.TimeOut()
	ctx := context.Background()

	e.logger.Info("quiz timed out",
		zap.Int64("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Int("presented", session.Index),
		zap.Int("correct", session.CorrectCount),
	)

	e.deliver(e.presenter.DeliverResults(ctx, session.ChatID, session.Results()),
		"deliver timeout results", session)

	if e.cfg.CleanupDelay <= 0 {
		e.store.DeleteIf(userID, entry)
		return
	}

	// Keep the terminated session around briefly so a response racing the
	// result message is answered with "time expired" instead of "no session".
	entry.SetCleanupTimer(time.AfterFunc(e.cfg.CleanupDelay, func() {
		e.store.DeleteIf(userID, entry)
	}))
}

// afterAdvanceLocked finishes the session or shows the next question once
// the cursor moved. Caller holds the entry lock.
func (e *Engine) afterAdvanceLocked(ctx context.Context, entry *storage.Entry) {
	session := entry.Session

	if session.Index >= session.Total() {
		session.Complete()
		entry.StopDeadlineTimer()

		e.logger.Info("quiz completed",
			zap.Int64("user_id", session.UserID),
			zap.String("session_id", session.ID),
			zap.Int("correct", session.CorrectCount),
			zap.Int("total", session.Total()),
		)

		e.deliver(e.presenter.DeliverResults(ctx, session.ChatID, session.Results()),
			"deliver results", session)
		e.store.DeleteIf(session.UserID, entry)
		return
	}

	e.deliver(e.presenter.DeliverQuestion(ctx, session.ChatID, e.viewLocked(session), false),
		"deliver question", session)
}

func (e *Engine) viewLocked(session *entities.QuizSession) QuestionView {
	question := session.Current()
	return QuestionView{
		Number:    session.Index + 1,
		Total:     session.Total(),
		Prompt:    question.Prompt,
		Options:   question.Options,
		TimeLimit: e.cfg.Deadline,
	}
}

func (e *Engine) reject(ctx context.Context, chatID int64, reason RejectReason, userID int64) {
	e.logger.Debug("event rejected",
		zap.Int64("user_id", userID),
		zap.String("reason", string(reason)),
	)
	if err := e.presenter.ReportRejected(ctx, chatID, reason); err != nil {
		e.logger.Error("failed to report rejection",
			zap.Int64("user_id", userID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
	}
}

func (e *Engine) deliver(err error, action string, session *entities.QuizSession) {
	if err == nil {
		return
	}
	// Delivery failures are non-fatal: the transition already happened and
	// is never rolled back.
	e.logger.Error("failed to "+action,
		zap.Int64("user_id", session.UserID),
		zap.String("session_id", session.ID),
		zap.Error(err),
	)
}

func staleReason(session *entities.QuizSession) (RejectReason, bool) {
	switch session.State {
	case entities.StateShowingExplanation:
		return ReasonAlreadyAnswered, true
	case entities.StateCompleted:
		return ReasonQuizFinished, true
	case entities.StateTimedOut:
		return ReasonTimeExpired, true
	default:
		return "", false
	}
}

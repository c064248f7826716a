package gui

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ramonehamilton/flashdeck/internal/events"
	"github.com/ramonehamilton/flashdeck/internal/metrics"
	"github.com/ramonehamilton/flashdeck/internal/quiz"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// ErrNoActiveQuiz is returned when a quiz call arrives without a running session.
var ErrNoActiveQuiz = errors.New("no active quiz")

// QuizFacade runs one quiz session at a time for the frontend.
type QuizFacade struct {
	services *Services

	mu      sync.Mutex
	session *quiz.Session
	shownAt time.Time
}

// NewQuizFacade creates a new QuizFacade with the given services.
func NewQuizFacade(services *Services) *QuizFacade {
	return &QuizFacade{
		services: services,
	}
}

// QuizState is what the quiz screen shows after every step.
type QuizState struct {
	DeckID   string          `json:"deckId"`
	Mode     models.QuizMode `json:"mode"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Finished bool            `json:"finished"`
	Card     *CardView       `json:"card,omitempty"`
	Summary  quiz.Summary    `json:"summary"`

	// Last is the result of the step that produced this state.
	Last *quiz.AnswerResult `json:"last,omitempty"`
}

// StartQuiz selects cards by criteria and starts a session, replacing any
// running one. A zero WrongThreshold in retry-wrong mode uses the configured
// default.
func (q *QuizFacade) StartQuiz(deckID string, criteria quiz.Criteria) (*QuizState, error) {
	if criteria.Mode == "" {
		criteria.Mode = models.QuizModeView
		if q.services.Config != nil {
			criteria.Mode = models.QuizMode(q.services.Config.Quiz.DefaultMode)
		}
	}
	if criteria.Mode == models.QuizModeRetryWrong && criteria.WrongThreshold == 0 && q.services.Config != nil {
		criteria.WrongThreshold = q.services.Config.Quiz.RetryWrongThreshold
	}

	deck, err := q.services.Decks.Deck(deckID)
	if err != nil {
		return nil, q.services.toAppError(err)
	}
	cards, err := q.services.Selector.Select(deck, criteria)
	if err != nil {
		return nil, q.services.toAppError(err)
	}
	session, err := quiz.Start(deckID, cards, criteria.Mode, q.services.Decks)
	if err != nil {
		return nil, q.services.toAppError(err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.session = session
	q.shownAt = time.Now()
	log.Printf("Started %s quiz on deck %s with %d cards", criteria.Mode, deckID, len(cards))
	return q.stateLocked(nil), nil
}

// CurrentQuiz returns the running session's state.
func (q *QuizFacade) CurrentQuiz() (*QuizState, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.session == nil {
		return nil, q.noActiveQuiz()
	}
	return q.stateLocked(nil), nil
}

// Answer records a self-graded answer.
func (q *QuizFacade) Answer(isCorrect bool) (*QuizState, error) {
	return q.step(false, func(s *quiz.Session) (quiz.AnswerResult, error) { return s.Answer(isCorrect) })
}

// Submit grades typed input against the current card.
func (q *QuizFacade) Submit(input string) (*QuizState, error) {
	return q.step(false, func(s *quiz.Session) (quiz.AnswerResult, error) { return s.Submit(input) })
}

// Skip moves on without recording an answer.
func (q *QuizFacade) Skip() (*QuizState, error) {
	return q.step(true, func(s *quiz.Session) (quiz.AnswerResult, error) { return s.Skip() })
}

// GetQuizMetrics returns answer timings since the app started. It is nil when
// metrics are not collected.
func (q *QuizFacade) GetQuizMetrics() *metrics.Stats {
	if q.services.Metrics == nil {
		return nil
	}
	return q.services.Metrics.GetStats()
}

// EndQuiz discards the running session and returns its totals so far.
func (q *QuizFacade) EndQuiz() (*quiz.Summary, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.session == nil {
		return nil, q.noActiveQuiz()
	}
	summary := q.session.Summary()
	q.session = nil
	return &summary, nil
}

func (q *QuizFacade) step(skip bool, fn func(*quiz.Session) (quiz.AnswerResult, error)) (*QuizState, error) {
	q.mu.Lock()
	if q.session == nil {
		q.mu.Unlock()
		return nil, q.noActiveQuiz()
	}
	result, err := fn(q.session)
	if err != nil {
		q.mu.Unlock()
		return nil, q.services.toAppError(err)
	}
	q.recordLocked(skip, result.Correct)
	state := q.stateLocked(&result)
	session := q.session
	q.mu.Unlock()

	if result.Summary != nil {
		q.finished(session, *result.Summary)
	}
	return state, nil
}

func (q *QuizFacade) recordLocked(skip, correct bool) {
	if m := q.services.Metrics; m != nil {
		if skip {
			m.RecordSkip(time.Since(q.shownAt))
		} else {
			m.RecordAnswer(time.Since(q.shownAt), correct)
		}
	}
	q.shownAt = time.Now()
}

func (q *QuizFacade) finished(session *quiz.Session, summary quiz.Summary) {
	log.Printf("Quiz on deck %s finished: %d correct, %d wrong", session.DeckID(), summary.TotalCorrect, summary.TotalWrong)
	if q.services.Dispatcher == nil {
		return
	}
	ctx := q.services.Context
	if ctx == nil {
		ctx = context.Background()
	}
	q.services.Dispatcher.Dispatch(events.NewTypedEvent(ctx, events.EventQuizFinished, events.QuizFinishedEvent{
		DeckID:        session.DeckID(),
		Mode:          session.Mode(),
		TotalAttempts: summary.TotalAttempts,
		TotalCorrect:  summary.TotalCorrect,
		TotalWrong:    summary.TotalWrong,
	}))
}

func (q *QuizFacade) stateLocked(last *quiz.AnswerResult) *QuizState {
	s := q.session
	index, total := s.Progress()
	state := &QuizState{
		DeckID:   s.DeckID(),
		Mode:     s.Mode(),
		Index:    index,
		Total:    total,
		Finished: s.State() == quiz.StateFinished,
		Summary:  s.Summary(),
		Last:     last,
	}
	if card, err := s.CurrentCard(); err == nil {
		state.Card = newCardView(card)
	}
	return state
}

func (q *QuizFacade) noActiveQuiz() *AppError {
	return &AppError{
		Message: q.services.message("noActiveQuiz", "No quiz is running", nil),
		Err:     ErrNoActiveQuiz,
	}
}

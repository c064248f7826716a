package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// ErrSessionFinished is returned when a finished session is asked for more cards
// or answers. It signals a caller bug; start a new session instead.
var ErrSessionFinished = errors.New("quiz session already finished")

// Recorder persists one answer against the owning deck. The deck repository
// implements it.
type Recorder interface {
	RecordAnswer(deckID, cardID string, isCorrect bool) (models.Card, error)
}

// State is the lifecycle state of a Session.
type State int

const (
	StateInProgress State = iota
	StateFinished
)

func (s State) String() string {
	if s == StateFinished {
		return "finished"
	}
	return "in_progress"
}

// Summary is emitted when the last card has been answered. Totals count only
// answers given in this session.
type Summary struct {
	TotalAttempts int               `json:"totalAttempts"`
	TotalCorrect  int               `json:"totalCorrect"`
	TotalWrong    int               `json:"totalWrong"`
	Skipped       int               `json:"skipped"`
	Streaks       stats.StreakStats `json:"streaks"`
}

// AnswerResult is the outcome of Answer, Submit or Skip. Summary is set only on
// the transition to StateFinished.
type AnswerResult struct {
	Card    models.Card `json:"card"`
	Correct bool        `json:"correct"`
	Summary *Summary    `json:"summary,omitempty"`
}

// Session walks a fixed card list. The list is a snapshot taken at Start, so later
// edits to the deck neither reorder nor refresh it.
// A Session is not safe for concurrent use.
type Session struct {
	deckID   string
	mode     models.QuizMode
	cards    []models.Card
	index    int
	state    State
	correct  int
	wrong    int
	skipped  int
	answers  []bool
	recorder Recorder
}

// Start begins a session over cards, which normally come from a Selector.
func Start(deckID string, cards []models.Card, mode models.QuizMode, recorder Recorder) (*Session, error) {
	if len(cards) == 0 {
		return nil, models.ErrEmptyCardList
	}
	if recorder == nil {
		return nil, errors.New("quiz session requires a recorder")
	}

	snapshot := make([]models.Card, len(cards))
	for i, c := range cards {
		snapshot[i] = c.Clone()
	}

	return &Session{
		deckID:   deckID,
		mode:     mode,
		cards:    snapshot,
		recorder: recorder,
		answers:  make([]bool, 0, len(cards)),
	}, nil
}

// DeckID returns the deck the session quizzes.
func (s *Session) DeckID() string { return s.deckID }

// Mode returns the quiz mode.
func (s *Session) Mode() models.QuizMode { return s.mode }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Progress returns the 0-based position of the current card and the card count.
func (s *Session) Progress() (index, total int) {
	return s.index, len(s.cards)
}

// CurrentCard returns the card being asked.
func (s *Session) CurrentCard() (models.Card, error) {
	if s.state == StateFinished {
		return models.Card{}, ErrSessionFinished
	}
	return s.cards[s.index].Clone(), nil
}

// Answer records a self-graded answer for the current card and advances.
// If the answer cannot be recorded the session does not move.
func (s *Session) Answer(isCorrect bool) (AnswerResult, error) {
	if s.state == StateFinished {
		return AnswerResult{}, ErrSessionFinished
	}

	card := s.cards[s.index]
	updated, err := s.recorder.RecordAnswer(s.deckID, card.ID, isCorrect)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("record answer for card %s: %w", card.ID, err)
	}

	if isCorrect {
		s.correct++
	} else {
		s.wrong++
	}
	s.answers = append(s.answers, isCorrect)

	return AnswerResult{Card: updated, Correct: isCorrect, Summary: s.advance()}, nil
}

// Submit grades typed input against the current card's back and records it.
// This is how solve mode answers.
func (s *Session) Submit(input string) (AnswerResult, error) {
	if s.state == StateFinished {
		return AnswerResult{}, ErrSessionFinished
	}
	return s.Answer(CheckAnswer(input, s.cards[s.index].Back))
}

// Skip moves past the current card without recording anything.
func (s *Session) Skip() (AnswerResult, error) {
	if s.state == StateFinished {
		return AnswerResult{}, ErrSessionFinished
	}
	card := s.cards[s.index].Clone()
	s.skipped++
	return AnswerResult{Card: card, Summary: s.advance()}, nil
}

// Summary returns the totals so far.
func (s *Session) Summary() Summary {
	return Summary{
		TotalAttempts: s.correct + s.wrong,
		TotalCorrect:  s.correct,
		TotalWrong:    s.wrong,
		Skipped:       s.skipped,
		Streaks:       stats.CalculateStreaks(s.answers),
	}
}

func (s *Session) advance() *Summary {
	if s.index+1 == len(s.cards) {
		s.state = StateFinished
		summary := s.Summary()
		return &summary
	}
	s.index++
	return nil
}

// CheckAnswer reports whether input matches the plain text of back exactly,
// ignoring surrounding whitespace.
func CheckAnswer(input, back string) bool {
	return strings.TrimSpace(input) == richtext.StripToPlainText(back)
}

// Package quiz selects cards for a quiz and walks a quiz session through them.
package quiz

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// Criteria describes which cards of a deck a quiz should cover.
type Criteria struct {
	Mode models.QuizMode `json:"mode"`

	// WrongThreshold is the minimum wrong count for QuizModeRetryWrong.
	WrongThreshold int `json:"wrongThreshold,omitempty"`

	// Keywords are the tags for QuizModeKeyword; a card needs at least one of them.
	Keywords []string `json:"keywords,omitempty"`
}

// Selector produces shuffled card lists for quiz sessions.
// A Selector is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector. A nil rng uses the package-level random source;
// tests pass a seeded generator for reproducible orders.
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// SelectAll returns every card of deck in random order.
func (s *Selector) SelectAll(deck models.Deck) ([]models.Card, error) {
	if len(deck.Cards) == 0 {
		return nil, models.ErrEmptyDeck
	}
	return s.shuffled(deck.Cards, func(models.Card) bool { return true }), nil
}

// SelectByWrongThreshold returns the cards answered wrong at least threshold times,
// in random order.
func (s *Selector) SelectByWrongThreshold(deck models.Deck, threshold int) ([]models.Card, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold %d: %w", threshold, models.ErrInvalidThreshold)
	}
	if len(deck.Cards) == 0 {
		return nil, models.ErrEmptyDeck
	}

	cards := s.shuffled(deck.Cards, func(c models.Card) bool { return c.Wrong >= threshold })
	if len(cards) == 0 {
		return nil, fmt.Errorf("wrong >= %d: %w", threshold, models.ErrNoMatchingCards)
	}
	return cards, nil
}

// SelectByKeywords returns the cards sharing at least one keyword with keywords,
// in random order. Blank keywords are ignored.
func (s *Selector) SelectByKeywords(deck models.Deck, keywords []string) ([]models.Card, error) {
	wanted := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			wanted[k] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil, models.ErrNoKeywordsSelected
	}
	if len(deck.Cards) == 0 {
		return nil, models.ErrEmptyDeck
	}

	cards := s.shuffled(deck.Cards, func(c models.Card) bool {
		for _, k := range c.Keywords {
			if _, ok := wanted[k]; ok {
				return true
			}
		}
		return false
	})
	if len(cards) == 0 {
		return nil, fmt.Errorf("keywords %v: %w", keywords, models.ErrNoMatchingCards)
	}
	return cards, nil
}

// Select dispatches on c.Mode. View and solve quizzes cover the whole deck.
func (s *Selector) Select(deck models.Deck, c Criteria) ([]models.Card, error) {
	switch c.Mode {
	case models.QuizModeView, models.QuizModeSolve:
		return s.SelectAll(deck)
	case models.QuizModeRetryWrong:
		return s.SelectByWrongThreshold(deck, c.WrongThreshold)
	case models.QuizModeKeyword:
		return s.SelectByKeywords(deck, c.Keywords)
	default:
		return nil, fmt.Errorf("unknown quiz mode %q", c.Mode)
	}
}

// shuffled copies the cards accepted by keep and permutes them uniformly.
func (s *Selector) shuffled(cards []models.Card, keep func(models.Card) bool) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if s.rng == nil {
		rand.Shuffle(len(out), swap)
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(out), swap)
	return out
}

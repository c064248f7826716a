// Package stats applies quiz outcomes to card counters and derives deck statistics.
package stats

import "github.com/ramonehamilton/flashdeck/internal/storage/models"

// ApplyOutcome returns a copy of card with one answer recorded: attempts grows by
// one together with exactly one of correct or wrong. Negative counters are read as
// zero and attempts is rederived, so the result always satisfies
// attempts == correct + wrong.
func ApplyOutcome(card models.Card, isCorrect bool) models.Card {
	out := Normalize(card)
	if isCorrect {
		out.Correct++
	} else {
		out.Wrong++
	}
	out.Attempts = out.Correct + out.Wrong
	return out
}

// Normalize clamps negative counters to zero and rederives attempts.
func Normalize(card models.Card) models.Card {
	out := card.Clone()
	if out.Correct < 0 {
		out.Correct = 0
	}
	if out.Wrong < 0 {
		out.Wrong = 0
	}
	out.Attempts = out.Correct + out.Wrong
	return out
}

// ResetCounters returns a copy of card with every counter zeroed.
func ResetCounters(card models.Card) models.Card {
	out := card.Clone()
	out.Attempts, out.Correct, out.Wrong = 0, 0, 0
	return out
}

// Accuracy returns correct/attempts, or 0 for an unanswered card.
func Accuracy(card models.Card) float64 {
	c := Normalize(card)
	if c.Attempts == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Attempts)
}

// DeckStats aggregates the counters of every card in a deck.
type DeckStats struct {
	CardCount     int     `json:"cardCount"`
	AnsweredCards int     `json:"answeredCards"`
	Attempts      int     `json:"attempts"`
	Correct       int     `json:"correct"`
	Wrong         int     `json:"wrong"`
	Accuracy      float64 `json:"accuracy"`
	MaxWrong      int     `json:"maxWrong"`
}

// Summarize totals the counters of cards.
func Summarize(cards []models.Card) DeckStats {
	s := DeckStats{CardCount: len(cards)}
	for _, card := range cards {
		c := Normalize(card)
		s.Attempts += c.Attempts
		s.Correct += c.Correct
		s.Wrong += c.Wrong
		if c.Attempts > 0 {
			s.AnsweredCards++
		}
		if c.Wrong > s.MaxWrong {
			s.MaxWrong = c.Wrong
		}
	}
	if s.Attempts > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Attempts)
	}
	return s
}

// CountAtLeastWrong returns how many cards were answered wrong at least threshold times.
func CountAtLeastWrong(cards []models.Card, threshold int) int {
	n := 0
	for _, c := range cards {
		if c.Wrong >= threshold {
			n++
		}
	}
	return n
}

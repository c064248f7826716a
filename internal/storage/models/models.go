package models

// StateVersion is the current schema version of the persisted state.
// Version 1 is the pre-keyword-pool layout written by the first app release.
const StateVersion = 2

// Card is a single flashcard.
// Front and Back hold editor markup and may contain hidden-text spans.
type Card struct {
	ID       string   `json:"id" validate:"omitempty,max=64"`
	Front    string   `json:"front"`
	Back     string   `json:"back"`
	Keywords []string `json:"keywords" validate:"omitempty,dive,max=64"`
	Attempts int      `json:"attempts" validate:"gte=0"`
	Correct  int      `json:"correct" validate:"gte=0"`
	Wrong    int      `json:"wrong" validate:"gte=0"`
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := c
	if c.Keywords != nil {
		out.Keywords = append([]string(nil), c.Keywords...)
	}
	return out
}

// HasKeyword reports whether the card is tagged with keyword.
func (c Card) HasKeyword(keyword string) bool {
	for _, k := range c.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// Deck is a titled, ordered collection of cards.
type Deck struct {
	ID    string `json:"id" validate:"omitempty,max=64"`
	Title string `json:"title" validate:"required"`
	Cards []Card `json:"cards" validate:"dive"`
}

// Clone returns a deep copy of the deck and its cards.
func (d Deck) Clone() Deck {
	out := d
	out.Cards = make([]Card, len(d.Cards))
	for i, c := range d.Cards {
		out.Cards[i] = c.Clone()
	}
	return out
}

// CardIndex returns the position of the card with the given id, or -1.
func (d Deck) CardIndex(cardID string) int {
	for i := range d.Cards {
		if d.Cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

// DeckSummary is the deck list view of a deck.
type DeckSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CardCount int    `json:"cardCount"`
	Attempts  int    `json:"attempts"`
	Correct   int    `json:"correct"`
	Wrong     int    `json:"wrong"`
}

// State is the whole persisted repository: every deck plus the global keyword pool.
type State struct {
	Version  int      `json:"version"`
	Decks    []Deck   `json:"decks"`
	Keywords []string `json:"keywords"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Version: s.Version}
	out.Decks = make([]Deck, len(s.Decks))
	for i, d := range s.Decks {
		out.Decks[i] = d.Clone()
	}
	out.Keywords = append([]string{}, s.Keywords...)
	return out
}

// QuizMode selects how a quiz session presents and grades cards.
type QuizMode string

const (
	// QuizModeView shows both sides and lets the user self-grade.
	QuizModeView QuizMode = "view"
	// QuizModeSolve asks the user to type the back text.
	QuizModeSolve QuizMode = "solve"
	// QuizModeKeyword quizzes cards sharing one of the chosen keywords.
	QuizModeKeyword QuizMode = "keyword"
	// QuizModeRetryWrong quizzes cards answered wrong at least N times.
	QuizModeRetryWrong QuizMode = "retryWrong"
)

// Valid reports whether m is a known quiz mode.
func (m QuizMode) Valid() bool {
	switch m {
	case QuizModeView, QuizModeSolve, QuizModeKeyword, QuizModeRetryWrong:
		return true
	}
	return false
}

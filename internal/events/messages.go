package events

import "github.com/ramonehamilton/flashdeck/internal/storage/models"

// Event types.
const (
	// EventStateChanged follows every successful repository mutation.
	EventStateChanged = "state:changed"
	// EventImportCompleted follows a merge of imported decks.
	EventImportCompleted = "import:completed"
	// EventQuizFinished follows the last answer of a quiz session.
	EventQuizFinished = "quiz:finished"
)

// StateChangedEvent is the payload of EventStateChanged. State is a deep copy taken
// while the repository lock was held, so observers may keep it. Revision grows by
// one per mutation and orders snapshots that are dispatched concurrently.
type StateChangedEvent struct {
	Operation string       `json:"operation"`
	DeckID    string       `json:"deckId,omitempty"`
	Revision  uint64       `json:"revision"`
	State     models.State `json:"-"`
}

// ImportCompletedEvent is the payload of EventImportCompleted.
type ImportCompletedEvent struct {
	Source        string `json:"source"`
	DecksAdded    int    `json:"decksAdded"`
	DecksSkipped  int    `json:"decksSkipped"`
	CardsImported int    `json:"cardsImported"`
	CardsRejected int    `json:"cardsRejected"`
}

// QuizFinishedEvent is the payload of EventQuizFinished.
type QuizFinishedEvent struct {
	DeckID        string          `json:"deckId"`
	Mode          models.QuizMode `json:"mode"`
	TotalAttempts int             `json:"totalAttempts"`
	TotalCorrect  int             `json:"totalCorrect"`
	TotalWrong    int             `json:"totalWrong"`
}

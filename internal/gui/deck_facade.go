package gui

import (
	"context"
	"log"

	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
	"github.com/ramonehamilton/flashdeck/internal/storage/repository"
)

// DeckFacade handles deck list and deck detail operations.
type DeckFacade struct {
	services *Services
}

// NewDeckFacade creates a new DeckFacade with the given services.
func NewDeckFacade(services *Services) *DeckFacade {
	return &DeckFacade{
		services: services,
	}
}

// DeckDetail is a deck with its aggregated statistics.
type DeckDetail struct {
	Deck  models.Deck     `json:"deck"`
	Stats stats.DeckStats `json:"stats"`
}

// ListDecks returns every deck with its card count, in creation order.
func (d *DeckFacade) ListDecks() []models.DeckSummary {
	return d.services.Decks.DeckSummaries()
}

// GetDeck retrieves a deck with its statistics and remembers it as the last
// opened deck.
func (d *DeckFacade) GetDeck(ctx context.Context, deckID string) (*DeckDetail, error) {
	deck, err := d.services.Decks.Deck(deckID)
	if err != nil {
		return nil, d.services.toAppError(err)
	}

	if d.services.Storage != nil {
		if err := d.services.Storage.Settings().Set(ctx, repository.SettingLastDeck, deckID); err != nil {
			log.Printf("Warning: Failed to remember last deck: %v", err)
		}
	}

	return &DeckDetail{Deck: deck, Stats: stats.Summarize(deck.Cards)}, nil
}

// LastDeckID returns the deck opened most recently, or "" if it no longer exists.
func (d *DeckFacade) LastDeckID(ctx context.Context) string {
	if d.services.Storage == nil {
		return ""
	}
	var deckID string
	if err := d.services.Storage.Settings().GetTyped(ctx, repository.SettingLastDeck, &deckID); err != nil {
		return ""
	}
	if _, err := d.services.Decks.Deck(deckID); err != nil {
		return ""
	}
	return deckID
}

// CreateDeck creates a new empty deck.
func (d *DeckFacade) CreateDeck(title string) (*models.Deck, error) {
	deck, err := d.services.Decks.AddDeck(title)
	if err != nil {
		return nil, d.services.toAppError(err)
	}
	log.Printf("Created deck %s (%s)", deck.Title, deck.ID)
	return &deck, nil
}

// RenameDeck changes a deck's title.
func (d *DeckFacade) RenameDeck(deckID, title string) (*models.Deck, error) {
	deck, err := d.services.Decks.RenameDeck(deckID, title)
	if err != nil {
		return nil, d.services.toAppError(err)
	}
	return &deck, nil
}

// DeleteDeck removes a deck and all of its cards.
func (d *DeckFacade) DeleteDeck(deckID string) error {
	if err := d.services.Decks.DeleteDeck(deckID); err != nil {
		return d.services.toAppError(err)
	}
	log.Printf("Deleted deck %s", deckID)
	return nil
}

// ResetDeckStats zeroes the counters of every card in a deck.
func (d *DeckFacade) ResetDeckStats(deckID string) error {
	if err := d.services.Decks.ResetStats(deckID); err != nil {
		return d.services.toAppError(err)
	}
	return nil
}

// CountRetryCandidates returns how many cards a retry-wrong quiz with threshold
// would cover.
func (d *DeckFacade) CountRetryCandidates(deckID string, threshold int) (int, error) {
	if threshold < 1 {
		return 0, d.services.toAppError(models.ErrInvalidThreshold)
	}
	deck, err := d.services.Decks.Deck(deckID)
	if err != nil {
		return 0, d.services.toAppError(err)
	}
	return stats.CountAtLeastWrong(deck.Cards, threshold), nil
}

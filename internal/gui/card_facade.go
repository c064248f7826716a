package gui

import (
	"log"

	"github.com/ramonehamilton/flashdeck/internal/decks"
	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// CardFacade handles card editing and the global keyword pool.
type CardFacade struct {
	services *Services
}

// NewCardFacade creates a new CardFacade with the given services.
func NewCardFacade(services *Services) *CardFacade {
	return &CardFacade{
		services: services,
	}
}

// CardInput is the editor payload for a new card.
type CardInput struct {
	Front    string   `json:"front"`
	Back     string   `json:"back"`
	Keywords []string `json:"keywords"`
}

// CardView is a card prepared for display.
type CardView struct {
	Card      models.Card `json:"card"`
	FrontText string      `json:"frontText"`
	BackText  string      `json:"backText"`
	HasHidden bool        `json:"hasHidden"`
	Accuracy  float64     `json:"accuracy"`
}

// KeywordInfo is one pool keyword with the number of cards using it.
type KeywordInfo struct {
	Keyword string `json:"keyword"`
	Cards   int    `json:"cards"`
}

func newCardView(c models.Card) *CardView {
	return &CardView{
		Card:      c,
		FrontText: richtext.StripToPlainText(c.Front),
		BackText:  richtext.StripToPlainText(c.Back),
		HasHidden: richtext.HasHidden(c.Front) || richtext.HasHidden(c.Back),
		Accuracy:  stats.Accuracy(c),
	}
}

// GetCard returns one card for the detail screen.
func (f *CardFacade) GetCard(deckID, cardID string) (*CardView, error) {
	c, err := f.services.Decks.Card(deckID, cardID)
	if err != nil {
		return nil, f.services.toAppError(err)
	}
	return newCardView(c), nil
}

// AddCard appends a card to a deck. Both sides must have visible text.
func (f *CardFacade) AddCard(deckID string, input CardInput) (*CardView, error) {
	c, err := f.services.Decks.AddCard(deckID, input.Front, input.Back, input.Keywords)
	if err != nil {
		return nil, f.services.toAppError(err)
	}
	return newCardView(c), nil
}

// UpdateCard applies a partial edit.
func (f *CardFacade) UpdateCard(deckID, cardID string, patch decks.CardPatch) (*CardView, error) {
	c, err := f.services.Decks.UpdateCard(deckID, cardID, patch)
	if err != nil {
		return nil, f.services.toAppError(err)
	}
	return newCardView(c), nil
}

// DeleteCard removes one card.
func (f *CardFacade) DeleteCard(deckID, cardID string) error {
	if err := f.services.Decks.DeleteCard(deckID, cardID); err != nil {
		return f.services.toAppError(err)
	}
	return nil
}

// DeleteCards removes several cards and returns how many were deleted.
func (f *CardFacade) DeleteCards(deckID string, cardIDs []string) (int, error) {
	n, err := f.services.Decks.DeleteCards(deckID, cardIDs)
	if err != nil {
		return 0, f.services.toAppError(err)
	}
	return n, nil
}

// NormalizeHidden rewrites editor markup the way saved cards store it. The
// editor calls it after the user hides a selection.
func (f *CardFacade) NormalizeHidden(html string) string {
	return richtext.NormalizeHidden(html)
}

// RevealAll removes hidden markup from html.
func (f *CardFacade) RevealAll(html string) string {
	return richtext.RevealAll(html)
}

// ListKeywords returns the pool in registration order with usage counts.
func (f *CardFacade) ListKeywords() []KeywordInfo {
	usage := f.services.Decks.KeywordUsage()
	pool := f.services.Decks.Keywords()
	out := make([]KeywordInfo, len(pool))
	for i, k := range pool {
		out[i] = KeywordInfo{Keyword: k, Cards: usage[k]}
	}
	return out
}

// AddKeyword registers a keyword in the pool.
func (f *CardFacade) AddKeyword(keyword string) error {
	if err := f.services.Decks.AddKeyword(keyword); err != nil {
		return f.services.toAppError(err)
	}
	return nil
}

// DeleteKeyword removes a keyword from the pool and every card using it.
func (f *CardFacade) DeleteKeyword(keyword string) (int, error) {
	n, err := f.services.Decks.DeleteKeyword(keyword)
	if err != nil {
		return 0, f.services.toAppError(err)
	}
	log.Printf("Deleted keyword %q from %d cards", keyword, n)
	return n, nil
}

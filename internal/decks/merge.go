package decks

import (
	"strings"

	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// MergeResult reports what an import merge did.
type MergeResult struct {
	DecksAdded    int      `json:"decksAdded"`
	DecksSkipped  int      `json:"decksSkipped"`
	CardsImported int      `json:"cardsImported"`
	CardsRejected int      `json:"cardsRejected"`
	AddedDeckIDs  []string `json:"addedDeckIds"`
}

// Merge adds imported decks. Decks are deduplicated by id with the first
// occurrence winning, and decks already in the repository come first. Incoming
// decks without an id get a fresh one. Cards with a blank side are rejected;
// the rest are normalized the same way AddCard normalizes them.
func (r *Repository) Merge(incoming []models.Deck) MergeResult {
	result := MergeResult{AddedDeckIDs: []string{}}

	_ = r.mutate("merge", func() (string, bool, error) {
		for _, in := range incoming {
			title := strings.TrimSpace(in.Title)
			if title == "" || (in.ID != "" && r.hasDeckLocked(in.ID)) {
				result.DecksSkipped++
				continue
			}

			deck := &models.Deck{ID: r.uniqueDeckIDLocked(in.ID), Title: title, Cards: []models.Card{}}
			for _, c := range in.Cards {
				if richtext.IsBlank(c.Front) || richtext.IsBlank(c.Back) {
					result.CardsRejected++
					continue
				}
				card := stats.Normalize(c)
				card.ID = r.uniqueCardIDLocked(deck, c.ID)
				card.Front = richtext.NormalizeHidden(c.Front)
				card.Back = richtext.NormalizeHidden(c.Back)
				card.Keywords = normalizeKeywords(c.Keywords)
				deck.Cards = append(deck.Cards, card)
				r.registerKeywordsLocked(card.Keywords)
				result.CardsImported++
			}

			r.decks = append(r.decks, deck)
			result.DecksAdded++
			result.AddedDeckIDs = append(result.AddedDeckIDs, deck.ID)
		}
		return "", result.DecksAdded > 0, nil
	})

	r.logger.Info("merged imported decks",
		"added", result.DecksAdded,
		"skipped", result.DecksSkipped,
		"cards", result.CardsImported,
		"rejected", result.CardsRejected)
	return result
}

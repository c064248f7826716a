// Package decks holds the in-memory deck repository: the single owner of every
// deck, card and the global keyword pool.
//
// Every mutation runs under one lock and, when it succeeds, publishes a
// state:changed event carrying a deep copy of the whole state. Persistence
// subscribes to those events; the repository itself never touches storage.
package decks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ramonehamilton/flashdeck/internal/events"
	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// IDGenerator returns a new opaque id.
type IDGenerator func() string

// NewID returns a time-ordered UUID, so ids sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Option configures a Repository.
type Option func(*Repository)

// WithIDGenerator replaces the id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Repository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithDispatcher publishes change events through d.
func WithDispatcher(d *events.EventDispatcher) Option {
	return func(r *Repository) {
		r.dispatcher = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// CardPatch is a partial card update. Nil fields are left untouched.
type CardPatch struct {
	Front    *string   `json:"front,omitempty"`
	Back     *string   `json:"back,omitempty"`
	Keywords *[]string `json:"keywords,omitempty"`
}

// Repository is the authoritative deck store. It is safe for concurrent use.
type Repository struct {
	mu       sync.RWMutex
	decks    []*models.Deck
	keywords []string
	revision uint64

	newID      IDGenerator
	dispatcher *events.EventDispatcher
	logger     *slog.Logger
}

// NewRepository creates an empty repository.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		keywords: []string{},
		newID:    NewID,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// mutate runs fn under the write lock. When fn reports a change, the revision is
// bumped and a state:changed event is published after the lock is released.
func (r *Repository) mutate(op string, fn func() (deckID string, changed bool, err error)) error {
	r.mu.Lock()
	deckID, changed, err := fn()
	if err != nil || !changed {
		r.mu.Unlock()
		return err
	}
	r.revision++
	var event *events.Event
	if r.dispatcher != nil {
		ev := events.NewTypedEvent(context.Background(), events.EventStateChanged, events.StateChangedEvent{
			Operation: op,
			DeckID:    deckID,
			Revision:  r.revision,
			State:     r.snapshotLocked(),
		})
		event = &ev
	}
	r.mu.Unlock()

	r.logger.Debug("repository changed", "op", op, "deck", deckID)
	if event != nil {
		r.dispatcher.Dispatch(*event)
	}
	return nil
}

// AddDeck creates an empty deck.
func (r *Repository) AddDeck(title string) (models.Deck, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Deck{}, models.ErrInvalidTitle
	}

	var deck models.Deck
	err := r.mutate("addDeck", func() (string, bool, error) {
		d := &models.Deck{ID: r.uniqueDeckIDLocked(""), Title: title, Cards: []models.Card{}}
		r.decks = append(r.decks, d)
		deck = d.Clone()
		return d.ID, true, nil
	})
	return deck, err
}

// RenameDeck changes a deck's title.
func (r *Repository) RenameDeck(deckID, title string) (models.Deck, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Deck{}, models.ErrInvalidTitle
	}

	var deck models.Deck
	err := r.mutate("renameDeck", func() (string, bool, error) {
		d, err := r.deckLocked(deckID)
		if err != nil {
			return "", false, err
		}
		d.Title = title
		deck = d.Clone()
		return d.ID, true, nil
	})
	return deck, err
}

// DeleteDeck removes a deck and all of its cards.
func (r *Repository) DeleteDeck(deckID string) error {
	return r.mutate("deleteDeck", func() (string, bool, error) {
		for i, d := range r.decks {
			if d.ID == deckID {
				r.decks = slices.Delete(r.decks, i, i+1)
				return deckID, true, nil
			}
		}
		return "", false, fmt.Errorf("deck %s: %w", deckID, models.ErrDeckNotFound)
	})
}

// AddCard appends a card to a deck. Hidden-text spans in front and back are
// normalized, and keywords new to the pool are registered.
func (r *Repository) AddCard(deckID, front, back string, keywords []string) (models.Card, error) {
	if richtext.IsBlank(front) {
		return models.Card{}, models.ErrEmptyFront
	}
	if richtext.IsBlank(back) {
		return models.Card{}, models.ErrEmptyBack
	}

	var card models.Card
	err := r.mutate("addCard", func() (string, bool, error) {
		d, err := r.deckLocked(deckID)
		if err != nil {
			return "", false, err
		}
		c := models.Card{
			ID:       r.uniqueCardIDLocked(d, ""),
			Front:    richtext.NormalizeHidden(front),
			Back:     richtext.NormalizeHidden(back),
			Keywords: normalizeKeywords(keywords),
		}
		d.Cards = append(d.Cards, c)
		r.registerKeywordsLocked(c.Keywords)
		card = c.Clone()
		return d.ID, true, nil
	})
	return card, err
}

// UpdateCard applies patch to a card.
func (r *Repository) UpdateCard(deckID, cardID string, patch CardPatch) (models.Card, error) {
	if patch.Front != nil && richtext.IsBlank(*patch.Front) {
		return models.Card{}, models.ErrEmptyFront
	}
	if patch.Back != nil && richtext.IsBlank(*patch.Back) {
		return models.Card{}, models.ErrEmptyBack
	}

	var card models.Card
	err := r.mutate("updateCard", func() (string, bool, error) {
		c, err := r.cardLocked(deckID, cardID)
		if err != nil {
			return "", false, err
		}
		if patch.Front != nil {
			c.Front = richtext.NormalizeHidden(*patch.Front)
		}
		if patch.Back != nil {
			c.Back = richtext.NormalizeHidden(*patch.Back)
		}
		if patch.Keywords != nil {
			c.Keywords = normalizeKeywords(*patch.Keywords)
			r.registerKeywordsLocked(c.Keywords)
		}
		card = c.Clone()
		return deckID, true, nil
	})
	return card, err
}

// DeleteCard removes one card.
func (r *Repository) DeleteCard(deckID, cardID string) error {
	return r.mutate("deleteCard", func() (string, bool, error) {
		d, err := r.deckLocked(deckID)
		if err != nil {
			return "", false, err
		}
		i := d.CardIndex(cardID)
		if i < 0 {
			return "", false, fmt.Errorf("card %s in deck %s: %w", cardID, deckID, models.ErrCardNotFound)
		}
		d.Cards = slices.Delete(d.Cards, i, i+1)
		return deckID, true, nil
	})
}

// DeleteCards removes every listed card that exists and returns how many went.
// Unknown card ids are ignored.
func (r *Repository) DeleteCards(deckID string, cardIDs []string) (int, error) {
	remove := make(map[string]struct{}, len(cardIDs))
	for _, id := range cardIDs {
		remove[id] = struct{}{}
	}

	removed := 0
	err := r.mutate("deleteCards", func() (string, bool, error) {
		d, err := r.deckLocked(deckID)
		if err != nil {
			return "", false, err
		}
		before := len(d.Cards)
		d.Cards = slices.DeleteFunc(d.Cards, func(c models.Card) bool {
			_, ok := remove[c.ID]
			return ok
		})
		removed = before - len(d.Cards)
		return deckID, removed > 0, nil
	})
	return removed, err
}

// RecordAnswer applies one quiz answer to a card's counters.
func (r *Repository) RecordAnswer(deckID, cardID string, isCorrect bool) (models.Card, error) {
	var card models.Card
	err := r.mutate("recordAnswer", func() (string, bool, error) {
		c, err := r.cardLocked(deckID, cardID)
		if err != nil {
			return "", false, err
		}
		*c = stats.ApplyOutcome(*c, isCorrect)
		card = c.Clone()
		return deckID, true, nil
	})
	return card, err
}

// ResetStats zeroes the counters of every card in a deck.
func (r *Repository) ResetStats(deckID string) error {
	return r.mutate("resetStats", func() (string, bool, error) {
		d, err := r.deckLocked(deckID)
		if err != nil {
			return "", false, err
		}
		for i := range d.Cards {
			d.Cards[i] = stats.ResetCounters(d.Cards[i])
		}
		return deckID, true, nil
	})
}

// AddKeyword registers a keyword in the global pool without attaching it to any
// card. Registering an existing keyword does nothing.
func (r *Repository) AddKeyword(keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return models.ErrEmptyKeyword
	}
	return r.mutate("addKeyword", func() (string, bool, error) {
		if slices.Contains(r.keywords, keyword) {
			return "", false, nil
		}
		r.keywords = append(r.keywords, keyword)
		return "", true, nil
	})
}

// DeleteKeyword removes a keyword from the pool and from every card that carries
// it, in one step. It returns the number of cards that lost the keyword.
func (r *Repository) DeleteKeyword(keyword string) (int, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return 0, models.ErrEmptyKeyword
	}

	touched := 0
	err := r.mutate("deleteKeyword", func() (string, bool, error) {
		inPool := slices.Contains(r.keywords, keyword)
		r.keywords = slices.DeleteFunc(r.keywords, func(k string) bool { return k == keyword })
		for _, d := range r.decks {
			for i := range d.Cards {
				before := len(d.Cards[i].Keywords)
				d.Cards[i].Keywords = slices.DeleteFunc(d.Cards[i].Keywords, func(k string) bool { return k == keyword })
				if len(d.Cards[i].Keywords) != before {
					touched++
				}
			}
		}
		return "", inPool || touched > 0, nil
	})
	return touched, err
}

// Deck returns a copy of one deck.
func (r *Repository) Deck(deckID string) (models.Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, err := r.deckLocked(deckID)
	if err != nil {
		return models.Deck{}, err
	}
	return d.Clone(), nil
}

// Decks returns copies of all decks in display order.
func (r *Repository) Decks() []models.Deck {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Deck, len(r.decks))
	for i, d := range r.decks {
		out[i] = d.Clone()
	}
	return out
}

// DeckSummaries returns the deck list view with card counts and totals.
func (r *Repository) DeckSummaries() []models.DeckSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.DeckSummary, len(r.decks))
	for i, d := range r.decks {
		s := stats.Summarize(d.Cards)
		out[i] = models.DeckSummary{
			ID:        d.ID,
			Title:     d.Title,
			CardCount: s.CardCount,
			Attempts:  s.Attempts,
			Correct:   s.Correct,
			Wrong:     s.Wrong,
		}
	}
	return out
}

// Card returns a copy of one card.
func (r *Repository) Card(deckID, cardID string) (models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, err := r.cardLocked(deckID, cardID)
	if err != nil {
		return models.Card{}, err
	}
	return c.Clone(), nil
}

// Keywords returns the global keyword pool in registration order.
func (r *Repository) Keywords() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.keywords...)
}

// KeywordUsage counts the cards carrying each pool keyword. Orphan keywords map to 0.
func (r *Repository) KeywordUsage() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	usage := make(map[string]int, len(r.keywords))
	for _, k := range r.keywords {
		usage[k] = 0
	}
	for _, d := range r.decks {
		for _, c := range d.Cards {
			for _, k := range c.Keywords {
				usage[k]++
			}
		}
	}
	return usage
}

// Revision returns the number of successful mutations since creation.
func (r *Repository) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// Snapshot returns a deep copy of the whole state, ready to persist.
func (r *Repository) Snapshot() models.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Restore replaces the repository contents with state, typically right after
// loading it. Duplicate deck ids keep their first occurrence and the keyword pool
// is widened to cover every card. No change event is published.
func (r *Repository) Restore(state models.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.decks = make([]*models.Deck, 0, len(state.Decks))
	r.keywords = normalizeKeywords(state.Keywords)
	seen := make(map[string]struct{}, len(state.Decks))
	for _, d := range state.Decks {
		if _, dup := seen[d.ID]; dup && d.ID != "" {
			r.logger.Warn("dropping duplicate deck on restore", "deck", d.ID)
			continue
		}
		deck := d.Clone()
		deck.ID = r.uniqueDeckIDLocked(deck.ID)
		seen[deck.ID] = struct{}{}
		for i := range deck.Cards {
			deck.Cards[i].Keywords = normalizeKeywords(deck.Cards[i].Keywords)
			r.registerKeywordsLocked(deck.Cards[i].Keywords)
		}
		r.decks = append(r.decks, &deck)
	}
}

func (r *Repository) snapshotLocked() models.State {
	state := models.State{
		Version:  models.StateVersion,
		Decks:    make([]models.Deck, len(r.decks)),
		Keywords: append([]string{}, r.keywords...),
	}
	for i, d := range r.decks {
		state.Decks[i] = d.Clone()
	}
	return state
}

func (r *Repository) deckLocked(deckID string) (*models.Deck, error) {
	for _, d := range r.decks {
		if d.ID == deckID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("deck %s: %w", deckID, models.ErrDeckNotFound)
}

func (r *Repository) cardLocked(deckID, cardID string) (*models.Card, error) {
	d, err := r.deckLocked(deckID)
	if err != nil {
		return nil, err
	}
	i := d.CardIndex(cardID)
	if i < 0 {
		return nil, fmt.Errorf("card %s in deck %s: %w", cardID, deckID, models.ErrCardNotFound)
	}
	return &d.Cards[i], nil
}

// uniqueDeckIDLocked returns want when it is free, otherwise a fresh id.
func (r *Repository) uniqueDeckIDLocked(want string) string {
	id := want
	for id == "" || r.hasDeckLocked(id) {
		id = r.newID()
	}
	return id
}

func (r *Repository) hasDeckLocked(id string) bool {
	for _, d := range r.decks {
		if d.ID == id {
			return true
		}
	}
	return false
}

func (r *Repository) uniqueCardIDLocked(d *models.Deck, want string) string {
	id := want
	for id == "" || d.CardIndex(id) >= 0 {
		id = r.newID()
	}
	return id
}

func (r *Repository) registerKeywordsLocked(keywords []string) {
	for _, k := range keywords {
		if !slices.Contains(r.keywords, k) {
			r.keywords = append(r.keywords, k)
		}
	}
}

// normalizeKeywords trims, drops blanks and removes duplicates, keeping first-seen
// order. The result is never nil.
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

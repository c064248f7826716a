package storage

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// MigrationReport describes the repairs MigrateState made.
type MigrationReport struct {
	FromVersion      int
	ToVersion        int
	DecksDropped     int
	IDsAssigned      int
	CountersRepaired int
	KeywordsDerived  bool
}

// Changed reports whether the migrated state differs from what was stored.
func (r MigrationReport) Changed() bool {
	return r.FromVersion != r.ToVersion || r.DecksDropped > 0 || r.IDsAssigned > 0 ||
		r.CountersRepaired > 0 || r.KeywordsDerived
}

// MigrateState upgrades a decoded state to models.StateVersion and repairs
// records that break the data invariants. Duplicate deck ids keep the first
// deck. Cards missing an id, or sharing one within a deck, get a fresh id.
// Counters are clamped at zero and attempts is rederived from correct and
// wrong. The keyword pool is trimmed, deduplicated and widened to cover every
// card keyword; version 1 states, which had no pool, derive it entirely.
func MigrateState(state models.State) (models.State, MigrationReport) {
	report := MigrationReport{FromVersion: state.Version, ToVersion: models.StateVersion}
	if report.FromVersion == 0 {
		report.FromVersion = 1
	}

	out := models.State{
		Version:  models.StateVersion,
		Decks:    make([]models.Deck, 0, len(state.Decks)),
		Keywords: cleanKeywords(state.Keywords),
	}
	if state.Keywords == nil {
		report.KeywordsDerived = true
	}

	seenDecks := make(map[string]struct{}, len(state.Decks))
	for _, d := range state.Decks {
		deck := d.Clone()
		if deck.ID == "" {
			deck.ID = newStateID()
			report.IDsAssigned++
		}
		if _, dup := seenDecks[deck.ID]; dup {
			report.DecksDropped++
			continue
		}
		seenDecks[deck.ID] = struct{}{}

		seenCards := make(map[string]struct{}, len(deck.Cards))
		for i := range deck.Cards {
			card := &deck.Cards[i]
			if _, dup := seenCards[card.ID]; card.ID == "" || dup {
				card.ID = newStateID()
				report.IDsAssigned++
			}
			seenCards[card.ID] = struct{}{}

			if card.Correct < 0 || card.Wrong < 0 || card.Attempts != card.Correct+card.Wrong {
				report.CountersRepaired++
			}
			*card = stats.Normalize(*card)
			card.Keywords = cleanKeywords(card.Keywords)
			for _, k := range card.Keywords {
				if !slices.Contains(out.Keywords, k) {
					out.Keywords = append(out.Keywords, k)
					report.KeywordsDerived = true
				}
			}
		}
		out.Decks = append(out.Decks, deck)
	}

	return out, report
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func newStateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

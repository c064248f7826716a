package quiz

import (
	"errors"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

func seededSelector(seed uint64) *Selector {
	return NewSelector(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func deckWithWrongCounts(wrong ...int) models.Deck {
	deck := models.Deck{ID: "d1", Title: "Deck"}
	for i, w := range wrong {
		deck.Cards = append(deck.Cards, models.Card{
			ID:       string(rune('a' + i)),
			Front:    "front",
			Back:     "back",
			Attempts: w,
			Wrong:    w,
		})
	}
	return deck
}

func cardIDs(cards []models.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return ids
}

func TestSelectAll(t *testing.T) {
	sel := seededSelector(1)
	deck := deckWithWrongCounts(0, 0, 0, 0, 0)

	cards, err := sel.SelectAll(deck)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, cardIDs(cards))
}

func TestSelectAll_SingleCard(t *testing.T) {
	cards, err := seededSelector(2).SelectAll(deckWithWrongCounts(0))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "a", cards[0].ID)
}

func TestSelectAll_EmptyDeck(t *testing.T) {
	_, err := seededSelector(3).SelectAll(models.Deck{ID: "empty", Title: "Empty"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmptyDeck))
	assert.True(t, models.IsEmptySelection(err))
}

func TestSelectAll_ReturnsCopies(t *testing.T) {
	deck := deckWithWrongCounts(1)
	deck.Cards[0].Keywords = []string{"k"}

	cards, err := seededSelector(4).SelectAll(deck)
	require.NoError(t, err)
	cards[0].Keywords[0] = "changed"
	cards[0].Front = "changed"

	assert.Equal(t, "k", deck.Cards[0].Keywords[0])
	assert.Equal(t, "front", deck.Cards[0].Front)
}

func TestSelectAll_SeededIsReproducible(t *testing.T) {
	deck := deckWithWrongCounts(0, 0, 0, 0, 0, 0, 0, 0)
	first, err := seededSelector(42).SelectAll(deck)
	require.NoError(t, err)
	second, err := seededSelector(42).SelectAll(deck)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSelectAll_EveryPositionReachable(t *testing.T) {
	sel := seededSelector(7)
	deck := deckWithWrongCounts(0, 0, 0)
	firstSeen := map[string]bool{}

	for i := 0; i < 200; i++ {
		cards, err := sel.SelectAll(deck)
		require.NoError(t, err)
		firstSeen[cards[0].ID] = true
	}
	assert.Len(t, firstSeen, 3, "every card should lead the order at least once")
}

func TestSelectByWrongThreshold(t *testing.T) {
	sel := seededSelector(9)
	deck := deckWithWrongCounts(0, 2, 3, 1)

	cards, err := sel.SelectByWrongThreshold(deck, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, cardIDs(cards))

	_, err = sel.SelectByWrongThreshold(deck, 5)
	assert.ErrorIs(t, err, models.ErrNoMatchingCards)
}

func TestSelectByWrongThreshold_Invalid(t *testing.T) {
	sel := seededSelector(10)
	for _, threshold := range []int{0, -1} {
		_, err := sel.SelectByWrongThreshold(deckWithWrongCounts(3), threshold)
		assert.ErrorIs(t, err, models.ErrInvalidThreshold, "threshold %d", threshold)
		assert.True(t, models.IsValidation(err))
	}
}

func TestSelectByWrongThreshold_EmptyDeck(t *testing.T) {
	_, err := seededSelector(11).SelectByWrongThreshold(models.Deck{}, 1)
	assert.ErrorIs(t, err, models.ErrEmptyDeck)
}

func TestSelectByKeywords(t *testing.T) {
	deck := models.Deck{ID: "d", Title: "T", Cards: []models.Card{
		{ID: "1", Keywords: []string{"math", "algebra"}},
		{ID: "2", Keywords: []string{"history"}},
		{ID: "3", Keywords: []string{"geometry", "math"}},
		{ID: "4"},
	}}
	sel := seededSelector(12)

	cards, err := sel.SelectByKeywords(deck, []string{"math"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, cardIDs(cards))

	cards, err = sel.SelectByKeywords(deck, []string{"history", "algebra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, cardIDs(cards))

	_, err = sel.SelectByKeywords(deck, []string{"biology"})
	assert.ErrorIs(t, err, models.ErrNoMatchingCards)

	_, err = sel.SelectByKeywords(deck, nil)
	assert.ErrorIs(t, err, models.ErrNoKeywordsSelected)

	_, err = sel.SelectByKeywords(deck, []string{"  "})
	assert.ErrorIs(t, err, models.ErrNoKeywordsSelected)
}

func TestSelect_DispatchesOnMode(t *testing.T) {
	deck := deckWithWrongCounts(0, 4)
	deck.Cards[0].Keywords = []string{"k"}
	sel := seededSelector(13)

	cards, err := sel.Select(deck, Criteria{Mode: models.QuizModeSolve})
	require.NoError(t, err)
	assert.Len(t, cards, 2)

	cards, err = sel.Select(deck, Criteria{Mode: models.QuizModeRetryWrong, WrongThreshold: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, cardIDs(cards))

	cards, err = sel.Select(deck, Criteria{Mode: models.QuizModeKeyword, Keywords: []string{"k"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, cardIDs(cards))

	_, err = sel.Select(deck, Criteria{Mode: "bogus"})
	assert.Error(t, err)
}

func TestSelector_GlobalSource(t *testing.T) {
	cards, err := NewSelector(nil).SelectAll(deckWithWrongCounts(0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cardIDs(cards))
}

package i18n

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

func newTranslator(t *testing.T, lang string) *Translator {
	t.Helper()
	tr, err := New(lang)
	require.NoError(t, err)
	return tr
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"kr", Korean},
		{"ko", Korean},
		{"", Korean},
		{"fr", Korean},
		{"en", English},
		{" EN ", English},
		{"en-US", English},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestTranslate(t *testing.T) {
	tr := newTranslator(t, "kr")
	assert.Equal(t, "퀴즈 시작", tr.T("startQuiz", nil))

	tr.SetLanguage("en")
	assert.Equal(t, "Start Quiz", tr.T("startQuiz", nil))
	assert.Equal(t, "No cards with wrong attempts ≥ 3", tr.T("noCardsWithThreshold", map[string]any{"Threshold": 3}))
}

func TestTranslate_UnknownID(t *testing.T) {
	tr := newTranslator(t, "en")
	assert.Equal(t, "noSuchMessage", tr.T("noSuchMessage", nil))
}

func TestToggle(t *testing.T) {
	tr := newTranslator(t, "kr")
	assert.Equal(t, English, tr.Toggle())
	assert.Equal(t, English, tr.Language())
	assert.Equal(t, Korean, tr.Toggle())
}

func catalogKeys(t *testing.T, name string) []string {
	t.Helper()
	data, err := localeFS.ReadFile(path.Join("locales", name))
	require.NoError(t, err)

	var messages map[string]any
	require.NoError(t, toml.Unmarshal(data, &messages))

	keys := make([]string, 0, len(messages))
	for id, msg := range messages {
		text, ok := msg.(string)
		require.True(t, ok, "%s: message %q is not a string", name, id)
		assert.NotEmpty(t, strings.TrimSpace(text), "%s: empty message %q", name, id)
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}

func TestCatalogsAreComplete(t *testing.T) {
	ko := catalogKeys(t, "active.ko.toml")
	en := catalogKeys(t, "active.en.toml")

	assert.Equal(t, ko, en, "Korean and English catalogs define different ids")
	assert.Equal(t, newTranslator(t, "kr").IDs(), ko)
}

func TestTranslate_IdentityMessage(t *testing.T) {
	tr := newTranslator(t, "en")
	assert.Equal(t, "cards", tr.T("cards", nil))
	assert.Equal(t, "cards", tr.Strings()["cards"])
}

func TestEveryErrorCodeHasMessage(t *testing.T) {
	tr := newTranslator(t, "en")
	sentinels := []*models.Error{
		models.ErrInvalidTitle, models.ErrEmptyFront, models.ErrEmptyBack,
		models.ErrEmptyKeyword, models.ErrInvalidThreshold, models.ErrNoKeywordsSelected,
		models.ErrDeckNotFound, models.ErrCardNotFound,
		models.ErrEmptyDeck, models.ErrNoMatchingCards, models.ErrEmptyCardList,
	}
	ids := tr.IDs()
	for _, e := range sentinels {
		assert.Contains(t, ids, e.Code)
	}
}

func TestErrorMessage(t *testing.T) {
	tr := newTranslator(t, "kr")

	wrapped := fmt.Errorf("start quiz: %w", models.ErrEmptyDeck)
	assert.Equal(t, "카드 없음", tr.ErrorMessage(wrapped))
	assert.Equal(t, "문제가 발생했습니다", tr.ErrorMessage(errors.New("disk full")))
	assert.Empty(t, tr.ErrorMessage(nil))

	tr.SetLanguage("en")
	assert.Equal(t, "Deck not found", tr.ErrorMessage(models.ErrDeckNotFound))
}

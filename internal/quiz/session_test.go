package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/flashdeck/internal/stats"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// memoryRecorder keeps card counters in a map, the way the deck repository does.
type memoryRecorder struct {
	cards map[string]models.Card
	fail  error
	calls int
}

func newMemoryRecorder(cards []models.Card) *memoryRecorder {
	r := &memoryRecorder{cards: make(map[string]models.Card)}
	for _, c := range cards {
		r.cards[c.ID] = c
	}
	return r
}

func (r *memoryRecorder) RecordAnswer(_, cardID string, isCorrect bool) (models.Card, error) {
	r.calls++
	if r.fail != nil {
		return models.Card{}, r.fail
	}
	card, ok := r.cards[cardID]
	if !ok {
		return models.Card{}, models.ErrCardNotFound
	}
	card = stats.ApplyOutcome(card, isCorrect)
	r.cards[cardID] = card
	return card, nil
}

func threeCards() []models.Card {
	return []models.Card{
		{ID: "c1", Front: "1+1", Back: "<p>2</p>", Attempts: 4, Correct: 2, Wrong: 2},
		{ID: "c2", Front: "2+2", Back: "<p>4</p>"},
		{ID: "c3", Front: "3+3", Back: "<p>6</p>", Attempts: 1, Wrong: 1},
	}
}

func TestStart_EmptyCardList(t *testing.T) {
	_, err := Start("d", nil, models.QuizModeView, newMemoryRecorder(nil))
	assert.ErrorIs(t, err, models.ErrEmptyCardList)
	assert.True(t, models.IsEmptySelection(err))
}

func TestStart_RequiresRecorder(t *testing.T) {
	_, err := Start("d", threeCards(), models.QuizModeView, nil)
	assert.Error(t, err)
}

func TestSession_ThreeAnswersProduceSummary(t *testing.T) {
	cards := threeCards()
	rec := newMemoryRecorder(cards)

	session, err := Start("d", cards, models.QuizModeView, rec)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, session.State())

	res, err := session.Answer(true)
	require.NoError(t, err)
	assert.Nil(t, res.Summary)

	res, err = session.Answer(true)
	require.NoError(t, err)
	assert.Nil(t, res.Summary)

	res, err = session.Answer(false)
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 3, res.Summary.TotalAttempts)
	assert.Equal(t, 2, res.Summary.TotalCorrect)
	assert.Equal(t, 1, res.Summary.TotalWrong)
	assert.Equal(t, 2, res.Summary.Streaks.LongestCorrectStreak)
	assert.Equal(t, StateFinished, session.State())

	for _, original := range cards {
		updated := rec.cards[original.ID]
		assert.Equal(t, original.Attempts+1, updated.Attempts, "card %s", original.ID)
		assert.Equal(t, updated.Correct+updated.Wrong, updated.Attempts)
	}
}

func TestSession_SummaryIgnoresLifetimeStats(t *testing.T) {
	cards := []models.Card{{ID: "only", Attempts: 10, Correct: 5, Wrong: 5}}
	session, err := Start("d", cards, models.QuizModeRetryWrong, newMemoryRecorder(cards))
	require.NoError(t, err)

	res, err := session.Answer(false)
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, Summary{TotalAttempts: 1, TotalWrong: 1, Streaks: stats.StreakStats{CurrentStreak: -1, LongestWrongStreak: 1}}, *res.Summary)
	assert.Equal(t, 11, res.Card.Attempts)
}

func TestSession_AnswerAfterFinishFails(t *testing.T) {
	cards := threeCards()[:1]
	rec := newMemoryRecorder(cards)
	session, err := Start("d", cards, models.QuizModeView, rec)
	require.NoError(t, err)

	_, err = session.Answer(true)
	require.NoError(t, err)

	_, err = session.Answer(true)
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, err = session.CurrentCard()
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, err = session.Skip()
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, err = session.Submit("x")
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.Equal(t, 1, rec.calls, "finished session must not record")
}

func TestSession_RecorderFailureLeavesStateUnchanged(t *testing.T) {
	cards := threeCards()
	rec := newMemoryRecorder(cards)
	rec.fail = errors.New("disk full")

	session, err := Start("d", cards, models.QuizModeView, rec)
	require.NoError(t, err)

	_, err = session.Answer(true)
	require.Error(t, err)

	index, total := session.Progress()
	assert.Equal(t, 0, index)
	assert.Equal(t, 3, total)
	assert.Equal(t, Summary{}, session.Summary())
}

func TestSession_SubmitSolveMode(t *testing.T) {
	cards := threeCards()
	rec := newMemoryRecorder(cards)
	session, err := Start("d", cards, models.QuizModeSolve, rec)
	require.NoError(t, err)

	res, err := session.Submit("  2 ")
	require.NoError(t, err)
	assert.True(t, res.Correct)

	res, err = session.Submit("five")
	require.NoError(t, err)
	assert.False(t, res.Correct)

	res, err = session.Submit("6")
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.TotalCorrect)
	assert.Equal(t, 1, res.Summary.TotalWrong)
}

func TestSession_SnapshotIsolation(t *testing.T) {
	cards := threeCards()
	session, err := Start("d", cards, models.QuizModeView, newMemoryRecorder(cards))
	require.NoError(t, err)

	cards[0].Front = "edited elsewhere"

	current, err := session.CurrentCard()
	require.NoError(t, err)
	assert.Equal(t, "1+1", current.Front)
}

func TestSession_SkipDeletedCard(t *testing.T) {
	cards := threeCards()
	rec := newMemoryRecorder(cards)
	delete(rec.cards, "c2")

	session, err := Start("d", cards, models.QuizModeView, rec)
	require.NoError(t, err)

	_, err = session.Answer(true)
	require.NoError(t, err)

	_, err = session.Answer(true)
	require.ErrorIs(t, err, models.ErrCardNotFound)

	res, err := session.Skip()
	require.NoError(t, err)
	assert.Equal(t, "c2", res.Card.ID)

	res, err = session.Answer(false)
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.TotalAttempts)
	assert.Equal(t, 1, res.Summary.Skipped)
}

func TestCheckAnswer(t *testing.T) {
	tests := []struct {
		input, back string
		want        bool
	}{
		{"Paris", "<p>Paris</p>", true},
		{" Paris ", "Paris", true},
		{"paris", "Paris", false},
		{"ab", `<span class="hidden-text">a</span><span class="hidden-text">b</span>`, true},
		{"", "<p></p>", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CheckAnswer(tt.input, tt.back), "CheckAnswer(%q, %q)", tt.input, tt.back)
	}
}

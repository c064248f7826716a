package stats

import (
	"testing"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

func TestApplyOutcome(t *testing.T) {
	tests := []struct {
		name      string
		card      models.Card
		isCorrect bool
		want      [3]int // attempts, correct, wrong
	}{
		{"fresh card correct", models.Card{}, true, [3]int{1, 1, 0}},
		{"fresh card wrong", models.Card{}, false, [3]int{1, 0, 1}},
		{"existing counters", models.Card{Attempts: 5, Correct: 3, Wrong: 2}, false, [3]int{6, 3, 3}},
		{"negative counters clamp", models.Card{Attempts: -2, Correct: -1, Wrong: -1}, true, [3]int{1, 1, 0}},
		{"inconsistent attempts repaired", models.Card{Attempts: 9, Correct: 1, Wrong: 1}, true, [3]int{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyOutcome(tt.card, tt.isCorrect)
			if got.Attempts != tt.want[0] || got.Correct != tt.want[1] || got.Wrong != tt.want[2] {
				t.Errorf("got attempts=%d correct=%d wrong=%d, want %v", got.Attempts, got.Correct, got.Wrong, tt.want)
			}
			if got.Attempts != got.Correct+got.Wrong {
				t.Errorf("invariant broken: %+v", got)
			}
		})
	}
}

func TestApplyOutcome_DoesNotMutateInput(t *testing.T) {
	card := models.Card{ID: "c1", Keywords: []string{"math"}, Attempts: 1, Correct: 1}
	updated := ApplyOutcome(card, false)

	if card.Attempts != 1 || card.Wrong != 0 {
		t.Errorf("input card mutated: %+v", card)
	}
	updated.Keywords[0] = "changed"
	if card.Keywords[0] != "math" {
		t.Error("keywords slice shared with input")
	}
}

func TestApplyOutcome_InvariantOverSequence(t *testing.T) {
	card := models.Card{}
	for i := 0; i < 50; i++ {
		card = ApplyOutcome(card, i%3 == 0)
		if card.Attempts != card.Correct+card.Wrong {
			t.Fatalf("invariant broken after %d answers: %+v", i+1, card)
		}
	}
	if card.Attempts != 50 {
		t.Errorf("expected 50 attempts, got %d", card.Attempts)
	}
}

func TestResetCounters(t *testing.T) {
	got := ResetCounters(models.Card{ID: "x", Attempts: 3, Correct: 2, Wrong: 1})
	if got.Attempts != 0 || got.Correct != 0 || got.Wrong != 0 || got.ID != "x" {
		t.Errorf("unexpected reset result: %+v", got)
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(models.Card{}); got != 0 {
		t.Errorf("unanswered card accuracy = %v, want 0", got)
	}
	if got := Accuracy(models.Card{Attempts: 4, Correct: 3, Wrong: 1}); got != 0.75 {
		t.Errorf("accuracy = %v, want 0.75", got)
	}
}

func TestSummarize(t *testing.T) {
	cards := []models.Card{
		{Attempts: 2, Correct: 1, Wrong: 1},
		{Attempts: 3, Correct: 0, Wrong: 3},
		{},
	}
	s := Summarize(cards)
	if s.CardCount != 3 || s.AnsweredCards != 2 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.Attempts != 5 || s.Correct != 1 || s.Wrong != 4 || s.MaxWrong != 3 {
		t.Errorf("unexpected totals: %+v", s)
	}
	if s.Accuracy != 0.2 {
		t.Errorf("accuracy = %v, want 0.2", s.Accuracy)
	}
	if n := CountAtLeastWrong(cards, 1); n != 2 {
		t.Errorf("CountAtLeastWrong = %d, want 2", n)
	}
}

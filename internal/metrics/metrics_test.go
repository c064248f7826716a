package metrics

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestHistogram_Percentiles(t *testing.T) {
	h := NewHistogram(100)
	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	if got := h.Count(); got != 5 {
		t.Fatalf("Count() = %d, want 5", got)
	}
	if got := h.Mean(); got != 3 {
		t.Errorf("Mean() = %v, want 3", got)
	}
	if got := h.Percentile(50); got != 3 {
		t.Errorf("Percentile(50) = %v, want 3", got)
	}
	if got := h.Percentile(75); got != 4 {
		t.Errorf("Percentile(75) = %v, want 4", got)
	}
	if got := h.Percentile(90); math.Abs(got-4.6) > 1e-9 {
		t.Errorf("Percentile(90) = %v, want 4.6", got)
	}
	if h.Min() != 1 || h.Max() != 5 {
		t.Errorf("Min/Max = %v/%v, want 1/5", h.Min(), h.Max())
	}
}

func TestHistogram_Empty(t *testing.T) {
	h := NewHistogram(0)
	stats := h.Stats()
	if stats != (LatencyStats{}) {
		t.Errorf("Stats() of empty histogram = %+v, want zero", stats)
	}
}

func TestHistogram_DropsOldestWhenFull(t *testing.T) {
	h := NewHistogram(10)
	for i := 1; i <= 11; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}
	if got := h.Count(); got != 9 {
		t.Fatalf("Count() = %d, want 9", got)
	}
	if got := h.Min(); got != 3 {
		t.Errorf("Min() = %v, want 3 after dropping the oldest samples", got)
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.RecordAnswer(2*time.Second, true)
	c.RecordAnswer(4*time.Second, false)
	c.RecordSkip(time.Second)
	c.RecordImport(10*time.Millisecond, nil)
	c.RecordImport(20*time.Millisecond, errors.New("bad file"))

	stats := c.GetStats()
	if stats.Answers != 2 || stats.Correct != 1 || stats.Skips != 1 {
		t.Errorf("answer counters = %d/%d/%d, want 2/1/1", stats.Answers, stats.Correct, stats.Skips)
	}
	if stats.Accuracy != 50 {
		t.Errorf("Accuracy = %v, want 50", stats.Accuracy)
	}
	if stats.AnswerLatency.Count != 3 {
		t.Errorf("AnswerLatency.Count = %d, want 3", stats.AnswerLatency.Count)
	}
	if stats.FilesImported != 1 || stats.ImportFailures != 1 {
		t.Errorf("import counters = %d/%d, want 1/1", stats.FilesImported, stats.ImportFailures)
	}

	c.Reset()
	stats = c.GetStats()
	if stats.Answers != 0 || stats.AnswerLatency.Count != 0 || stats.FilesImported != 0 {
		t.Errorf("after Reset: %+v", stats)
	}
}

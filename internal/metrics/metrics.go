// Package metrics collects in-process timings and counters for quiz sessions
// and inbox imports.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks how fast cards are answered and how inbox imports fare.
// It is safe for concurrent use.
type Collector struct {
	// AnswerLatency is the time from showing a card to its answer or skip.
	AnswerLatency *Histogram
	// ImportLatency is the time one inbox file took to import.
	ImportLatency *Histogram

	Answers        atomic.Uint64
	Correct        atomic.Uint64
	Skips          atomic.Uint64
	FilesImported  atomic.Uint64
	ImportFailures atomic.Uint64

	mu        sync.RWMutex
	startTime time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		AnswerLatency: NewHistogram(defaultMaxSamples),
		ImportLatency: NewHistogram(defaultMaxSamples),
		startTime:     time.Now(),
	}
}

// RecordAnswer records one graded answer.
func (c *Collector) RecordAnswer(d time.Duration, correct bool) {
	c.AnswerLatency.Record(d)
	c.Answers.Add(1)
	if correct {
		c.Correct.Add(1)
	}
}

// RecordSkip records a skipped card.
func (c *Collector) RecordSkip(d time.Duration) {
	c.AnswerLatency.Record(d)
	c.Skips.Add(1)
}

// RecordImport records one inbox file. A non-nil err counts as a failure.
func (c *Collector) RecordImport(d time.Duration, err error) {
	c.ImportLatency.Record(d)
	if err != nil {
		c.ImportFailures.Add(1)
		return
	}
	c.FilesImported.Add(1)
}

// Stats is a point-in-time copy of a Collector.
type Stats struct {
	AnswerLatency LatencyStats `json:"answer_latency"`
	ImportLatency LatencyStats `json:"import_latency"`

	Answers        uint64  `json:"answers"`
	Correct        uint64  `json:"correct"`
	Skips          uint64  `json:"skips"`
	Accuracy       float64 `json:"accuracy"` // percentage
	FilesImported  uint64  `json:"files_imported"`
	ImportFailures uint64  `json:"import_failures"`

	Uptime string `json:"uptime"`
}

// LatencyStats summarizes a histogram, in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// GetStats returns a snapshot of the current statistics.
func (c *Collector) GetStats() *Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	answers := c.Answers.Load()
	correct := c.Correct.Load()
	accuracy := 0.0
	if answers > 0 {
		accuracy = float64(correct) / float64(answers) * 100
	}

	return &Stats{
		AnswerLatency:  c.AnswerLatency.Stats(),
		ImportLatency:  c.ImportLatency.Stats(),
		Answers:        answers,
		Correct:        correct,
		Skips:          c.Skips.Load(),
		Accuracy:       accuracy,
		FilesImported:  c.FilesImported.Load(),
		ImportFailures: c.ImportFailures.Load(),
		Uptime:         time.Since(c.startTime).Round(time.Second).String(),
	}
}

// Reset clears every histogram and counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.AnswerLatency.Reset()
	c.ImportLatency.Reset()
	c.Answers.Store(0)
	c.Correct.Store(0)
	c.Skips.Store(0)
	c.FilesImported.Store(0)
	c.ImportFailures.Store(0)
	c.startTime = time.Now()
}

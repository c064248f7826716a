package metrics

import (
	"math"
	"slices"
	"sync"
	"time"
)

const defaultMaxSamples = 10000

// Histogram keeps a bounded window of duration samples, in milliseconds, and
// answers percentile queries over it.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64
	maxSize int
}

// NewHistogram creates a histogram holding at most maxSize samples. Once full,
// the oldest fifth is dropped.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = defaultMaxSamples
	}
	return &Histogram{
		samples: make([]float64, 0, min(maxSize, 256)),
		maxSize: maxSize,
	}
}

// Record adds a sample.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, float64(d.Microseconds())/1000.0)
	if len(h.samples) > h.maxSize {
		drop := max(h.maxSize/5, 1)
		h.samples = slices.Delete(h.samples, 0, drop)
	}
}

// Mean returns the average sample, or 0 when empty.
func (h *Histogram) Mean() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.samples {
		sum += v
	}
	return sum / float64(len(h.samples))
}

// Percentile returns the p-th percentile (0-100) with linear interpolation
// between neighbouring samples.
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.RLock()
	sorted := slices.Clone(h.samples)
	h.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)

	p = math.Max(0, math.Min(100, p))
	index := p / 100.0 * float64(len(sorted)-1)
	lower, upper := int(math.Floor(index)), int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// Min returns the smallest sample, or 0 when empty.
func (h *Histogram) Min() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.samples) == 0 {
		return 0
	}
	return slices.Min(h.samples)
}

// Max returns the largest sample, or 0 when empty.
func (h *Histogram) Max() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.samples) == 0 {
		return 0
	}
	return slices.Max(h.samples)
}

// Count returns the number of samples held.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Reset drops every sample.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
}

// Stats summarizes the histogram.
func (h *Histogram) Stats() LatencyStats {
	return LatencyStats{
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		P99:   h.Percentile(99),
		Min:   h.Min(),
		Max:   h.Max(),
		Count: h.Count(),
	}
}

package hyperliquid

import (
	"sync"
	"time"
)

// weightSample records the weight consumed by one successful request.
type weightSample struct {
	at     time.Time
	weight int
}

// weightWindow tracks request weight consumed over a trailing window.
// Samples older than the span are pruned before every admission decision,
// so the sequence never holds entries older than the span when Delay or
// Record runs.
type weightWindow struct {
	mu      sync.Mutex
	span    time.Duration
	budget  int
	maxWait time.Duration
	samples []weightSample
}

func newWeightWindow(span time.Duration, budget int, maxWait time.Duration) *weightWindow {
	return &weightWindow{
		span:    span,
		budget:  budget,
		maxWait: maxWait,
	}
}

// Delay reports how long a caller must wait before issuing a request of the
// given weight. Zero means the request is admitted immediately. The wait is
// capped at maxWait even when the window would need longer to drain.
func (w *weightWindow) Delay(weight int, now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)

	used := 0
	for _, s := range w.samples {
		used += s.weight
	}
	if used+weight <= w.budget {
		return 0
	}
	if len(w.samples) == 0 {
		// A single request heavier than the whole budget; waiting
		// cannot help.
		return 0
	}

	wait := w.span - now.Sub(w.samples[0].at)
	if wait > w.maxWait {
		wait = w.maxWait
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// Record appends a sample for a request that was actually issued.
func (w *weightWindow) Record(weight int, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	w.samples = append(w.samples, weightSample{at: now, weight: weight})
}

// Used returns the weight consumed inside the window at now.
func (w *weightWindow) Used(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	used := 0
	for _, s := range w.samples {
		used += s.weight
	}
	return used
}

// prune drops samples older than the window span. Must be called with the
// lock held. Samples are in insertion order, which is chronological.
func (w *weightWindow) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.samples) && !w.samples[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		w.samples = w.samples[i:]
	}
}

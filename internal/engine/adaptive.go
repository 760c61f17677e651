package engine

import (
	"sync"
	"time"
)

// PerformanceSample is one observation of executor throughput.
type PerformanceSample struct {
	Kind           OpKind        `json:"kind"`
	Units          int           `json:"units"`
	Duration       time.Duration `json:"duration"`
	UnitsPerSecond float64       `json:"units_per_second"`
	Success        bool          `json:"success"`
	At             time.Time     `json:"at"`
}

// Additive-increase/additive-decrease tuning of the fill chunk edge.
// Thresholds follow observed server behavior: above ~10k blocks/s with
// sub-2s latency the server has headroom; below 5k blocks/s or above 5s
// it is struggling.
const (
	adjustStep       = 4
	adjustWindow     = 10
	adjustMinSamples = 5
	fastUnitsPerSec  = 10000
	slowUnitsPerSec  = 5000
)

var (
	fastLatency = 2 * time.Second
	slowLatency = 5 * time.Second
)

// AdaptiveSizer owns the current chunk edge length and the sliding window
// of performance samples that drives it. Safe for concurrent use; samples
// are append-only with FIFO eviction.
type AdaptiveSizer struct {
	mu       sync.Mutex
	size     int
	def      int
	minSize  int
	maxSize  int
	window   []PerformanceSample
	capacity int
}

func NewAdaptiveSizer(def, minSize, maxSize, capacity int) *AdaptiveSizer {
	if minSize < 1 {
		minSize = 1
	}
	if maxSize < minSize {
		maxSize = minSize
	}
	if def < minSize {
		def = minSize
	}
	if def > maxSize {
		def = maxSize
	}
	if capacity < 1 {
		capacity = 1
	}
	return &AdaptiveSizer{size: def, def: def, minSize: minSize, maxSize: maxSize, capacity: capacity}
}

// ChunkSize returns the current edge length. Batch operations read it once
// when they start and never mid-batch.
func (a *AdaptiveSizer) ChunkSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

// Record appends a sample, evicting the oldest past capacity, and re-runs
// the adjustment rule.
func (a *AdaptiveSizer) Record(s PerformanceSample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.window = append(a.window, s)
	if len(a.window) > a.capacity {
		a.window = a.window[len(a.window)-a.capacity:]
	}
	a.adjustLocked()
}

// Window returns a copy of the retained samples, oldest first.
func (a *AdaptiveSizer) Window() []PerformanceSample {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]PerformanceSample, len(a.window))
	copy(out, a.window)
	return out
}

func (a *AdaptiveSizer) adjustLocked() {
	// Means over the last adjustWindow successful samples.
	var (
		n        int
		sumUPS   float64
		sumLatNS int64
	)
	for i := len(a.window) - 1; i >= 0 && n < adjustWindow; i-- {
		s := a.window[i]
		if !s.Success {
			continue
		}
		n++
		sumUPS += s.UnitsPerSecond
		sumLatNS += int64(s.Duration)
	}
	if n < adjustMinSamples {
		return
	}
	meanUPS := sumUPS / float64(n)
	meanLat := time.Duration(sumLatNS / int64(n))

	switch {
	case meanUPS > fastUnitsPerSec && meanLat < fastLatency:
		a.size = min(a.size+adjustStep, a.maxSize)
	case meanUPS < slowUnitsPerSec || meanLat > slowLatency:
		a.size = max(a.size-adjustStep, a.minSize)
	}
}

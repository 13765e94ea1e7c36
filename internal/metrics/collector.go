package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector accumulates counters for a run of document comparisons
type Collector struct {
	batchMetrics  *BatchMetrics
	outcomeCounts map[string]*int64
	mu            sync.RWMutex
	startTime     time.Time // fixed at creation
}

// BatchMetrics tracks comparison throughput and outcomes
type BatchMetrics struct {
	// Pair processing
	PairsProcessed int64 `json:"pairs_processed"`
	PairsFailed    int64 `json:"pairs_failed"`
	PairsTooLarge  int64 `json:"pairs_too_large"`
	PairsChanged   int64 `json:"pairs_changed"`
	ActiveDiffs    int64 `json:"active_diffs"`
	MaxActiveDiffs int64 `json:"max_active_diffs"`

	// Operation totals across all pairs
	Inserted int64 `json:"inserted"`
	Deleted  int64 `json:"deleted"`
	Modified int64 `json:"modified"`

	// Timing
	TotalDiffTime time.Duration `json:"total_diff_time"`
	MaxDiffTime   time.Duration `json:"max_diff_time"`

	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// Outcome is the per-pair input to Record
type Outcome struct {
	Inserted int
	Deleted  int
	Modified int
	Duration time.Duration
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	now := time.Now()
	return &Collector{
		batchMetrics:  &BatchMetrics{StartTime: now},
		outcomeCounts: make(map[string]*int64),
		startTime:     now,
	}
}

// Begin marks a diff as in flight. Every Begin is paired with Record or
// RecordFailure.
func (c *Collector) Begin() {
	active := atomic.AddInt64(&c.batchMetrics.ActiveDiffs, 1)
	storeMax(&c.batchMetrics.MaxActiveDiffs, active)
}

// Record adds a completed comparison
func (c *Collector) Record(o Outcome) {
	atomic.AddInt64(&c.batchMetrics.ActiveDiffs, -1)
	atomic.AddInt64(&c.batchMetrics.PairsProcessed, 1)
	atomic.AddInt64(&c.batchMetrics.Inserted, int64(o.Inserted))
	atomic.AddInt64(&c.batchMetrics.Deleted, int64(o.Deleted))
	atomic.AddInt64(&c.batchMetrics.Modified, int64(o.Modified))
	if o.Inserted+o.Deleted+o.Modified > 0 {
		atomic.AddInt64(&c.batchMetrics.PairsChanged, 1)
		c.IncrementOutcome("changed")
	} else {
		c.IncrementOutcome("unchanged")
	}

	d := int64(o.Duration)
	atomic.AddInt64((*int64)(&c.batchMetrics.TotalDiffTime), d)
	storeMax((*int64)(&c.batchMetrics.MaxDiffTime), d)
}

// RecordFailure adds a comparison that returned an error. tooLarge marks
// failures caused by exhausting the symbol space.
func (c *Collector) RecordFailure(tooLarge bool) {
	atomic.AddInt64(&c.batchMetrics.ActiveDiffs, -1)
	atomic.AddInt64(&c.batchMetrics.PairsFailed, 1)
	if tooLarge {
		atomic.AddInt64(&c.batchMetrics.PairsTooLarge, 1)
		c.IncrementOutcome("too_complex")
		return
	}
	c.IncrementOutcome("failed")
}

func storeMax(addr *int64, v int64) {
	for {
		max := atomic.LoadInt64(addr)
		if v <= max {
			return
		}
		if atomic.CompareAndSwapInt64(addr, max, v) {
			return
		}
	}
}

// IncrementOutcome increments a named outcome counter
func (c *Collector) IncrementOutcome(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, exists := c.outcomeCounts[name]; exists {
		atomic.AddInt64(counter, 1)
	} else {
		var newCounter int64 = 1
		c.outcomeCounts[name] = &newCounter
	}
}

// GetMetrics returns a snapshot of the current metrics
func (c *Collector) GetMetrics() BatchMetrics {
	start := c.startTime
	return BatchMetrics{
		PairsProcessed: atomic.LoadInt64(&c.batchMetrics.PairsProcessed),
		PairsFailed:    atomic.LoadInt64(&c.batchMetrics.PairsFailed),
		PairsTooLarge:  atomic.LoadInt64(&c.batchMetrics.PairsTooLarge),
		PairsChanged:   atomic.LoadInt64(&c.batchMetrics.PairsChanged),
		ActiveDiffs:    atomic.LoadInt64(&c.batchMetrics.ActiveDiffs),
		MaxActiveDiffs: atomic.LoadInt64(&c.batchMetrics.MaxActiveDiffs),
		Inserted:       atomic.LoadInt64(&c.batchMetrics.Inserted),
		Deleted:        atomic.LoadInt64(&c.batchMetrics.Deleted),
		Modified:       atomic.LoadInt64(&c.batchMetrics.Modified),
		TotalDiffTime:  time.Duration(atomic.LoadInt64((*int64)(&c.batchMetrics.TotalDiffTime))),
		MaxDiffTime:    time.Duration(atomic.LoadInt64((*int64)(&c.batchMetrics.MaxDiffTime))),
		StartTime:      start,
		Uptime:         time.Since(start),
	}
}

// GetOutcomes returns all outcome counters
func (c *Collector) GetOutcomes() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int64)
	for name, counter := range c.outcomeCounts {
		result[name] = atomic.LoadInt64(counter)
	}
	return result
}

// ExportJSON returns the snapshot and outcome counters as JSON
func (c *Collector) ExportJSON() ([]byte, error) {
	return json.Marshal(struct {
		BatchMetrics
		Outcomes     map[string]int64 `json:"outcomes"`
		ErrorRate    float64          `json:"error_rate"`
		AverageDiffs time.Duration    `json:"average_diff_time"`
	}{
		BatchMetrics: c.GetMetrics(),
		Outcomes:     c.GetOutcomes(),
		ErrorRate:    c.GetErrorRate(),
		AverageDiffs: c.GetAverageDiffTime(),
	})
}

// GetErrorRate returns the percentage of comparisons that failed
func (c *Collector) GetErrorRate() float64 {
	processed := atomic.LoadInt64(&c.batchMetrics.PairsProcessed)
	failed := atomic.LoadInt64(&c.batchMetrics.PairsFailed)

	if processed+failed == 0 {
		return 0.0
	}

	return float64(failed) / float64(processed+failed) * 100.0
}

// GetAverageDiffTime returns the mean duration of successful comparisons
func (c *Collector) GetAverageDiffTime() time.Duration {
	processed := atomic.LoadInt64(&c.batchMetrics.PairsProcessed)
	if processed == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64((*int64)(&c.batchMetrics.TotalDiffTime)) / processed)
}

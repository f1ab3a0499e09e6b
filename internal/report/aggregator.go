package report

import (
	"sync"
	"time"

	"riskhypo/domain/core"
	"riskhypo/domain/hypothesis"
)

// Aggregator accumulates results in append order. It is safe for concurrent use.
type Aggregator struct {
	mu          sync.Mutex
	runID       core.RunID
	fingerprint core.Hash
	results     []hypothesis.TestResult
	now         func() time.Time
}

// NewAggregator creates an aggregator for one run
func NewAggregator(runID core.RunID, fingerprint core.Hash) *Aggregator {
	return &Aggregator{runID: runID, fingerprint: fingerprint, now: time.Now}
}

// Append records a result. Duplicates are kept.
func (a *Aggregator) Append(result hypothesis.TestResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, result)
}

// Len returns the number of results appended so far
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

// Report snapshots the results appended so far
func (a *Aggregator) Report() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return New(a.runID, a.fingerprint, a.now().UTC(), a.results)
}

// Package collector accumulates per-test outcomes during a single run.
package collector

import (
	"sync"

	"github.com/kamilpajak/fring/pkg/models"
)

// Collector gathers outcomes for one test run. Tests may finish on
// concurrent workers upstream, so all mutation happens under a single
// mutex. A Collector is a plain value owned by its run; create one per run
// rather than sharing a process-wide instance.
type Collector struct {
	mu         sync.Mutex
	totalTests int
	outcomes   []models.TestOutcome
	failures   []models.FailureRecord
}

// New returns an empty Collector.
func New() *Collector {
	return &Collector{}
}

// OnRunStart records the total test count and resets all accumulated state.
// Call exactly once before any outcome is recorded; calling it again starts
// a fresh run on the same instance.
func (c *Collector) OnRunStart(totalTests int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalTests = totalTests
	c.outcomes = nil
	c.failures = nil
}

// OnTestFinished appends an outcome in execution order. Non-passing,
// non-skipped outcomes also produce a FailureRecord. A test executed more
// than once yields multiple entries; there is no deduplication by name.
func (c *Collector) OnTestFinished(outcome models.TestOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.outcomes = append(c.outcomes, outcome)
	if outcome.IsFailure() {
		c.failures = append(c.failures, models.NewFailureRecord(outcome))
	}
}

// OnRunEnd returns the accumulated outcomes, failures, and the total test
// count announced at run start. The returned slices are copies; the
// collector can be reset with OnRunStart without invalidating them.
func (c *Collector) OnRunEnd() (outcomes []models.TestOutcome, failures []models.FailureRecord, totalTests int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcomes = make([]models.TestOutcome, len(c.outcomes))
	copy(outcomes, c.outcomes)
	failures = make([]models.FailureRecord, len(c.failures))
	copy(failures, c.failures)
	return outcomes, failures, c.totalTests
}

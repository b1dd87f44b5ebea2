// Package trend flags tests whose recent outcome history shows flakiness
// or persistent failure.
package trend

import (
	"context"
	"sort"

	"github.com/kamilpajak/fring/internal/history"
	"github.com/kamilpajak/fring/pkg/models"
)

// windowSize is how many of the newest ledger entries are examined per test.
const windowSize = 3

// minHistory is the minimum number of recorded statuses before a test is
// eligible for trend evaluation.
const minHistory = 2

// Detector reads the history ledger and derives trend flags.
type Detector struct {
	ledger *history.Ledger
}

// NewDetector creates a Detector over the given ledger.
func NewDetector(ledger *history.Ledger) *Detector {
	return &Detector{ledger: ledger}
}

// Detect evaluates every test in the partition's ledger. A test with fewer
// than two entries is skipped. Over the last three entries (fewer if not
// yet available): all non-passing emits Persistent Failure, a mixed window
// emits Flaky, a uniformly passing window emits nothing. At most one flag
// per test, persistent failure checked first. Output is sorted by test
// name so the same ledger always yields the same list.
func (d *Detector) Detect(ctx context.Context, partition string) ([]models.TrendFlag, error) {
	snap, err := d.ledger.Load(ctx, partition)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	var flags []models.TrendFlag
	for _, name := range names {
		statuses := snap[name]
		if len(statuses) < minHistory {
			continue
		}

		window := statuses
		if len(window) > windowSize {
			window = window[len(window)-windowSize:]
		}

		if kind, ok := evaluate(window); ok {
			flags = append(flags, models.TrendFlag{
				Partition: partition,
				TestName:  name,
				Kind:      kind,
			})
		}
	}

	return flags, nil
}

func evaluate(window []models.TestStatus) (models.TrendKind, bool) {
	allFailed := true
	distinct := map[models.TestStatus]struct{}{}
	for _, s := range window {
		if s == models.StatusPassed {
			allFailed = false
		}
		distinct[s] = struct{}{}
	}

	if allFailed {
		return models.TrendPersistentFailure, true
	}
	if len(distinct) > 1 {
		return models.TrendFlaky, true
	}
	return "", false
}

package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kamilpajak/fring/pkg/models"
)

// DefaultPartition groups all runs together unless the caller configures a
// partition (e.g. a carrier or device lane).
const DefaultPartition = "DEFAULT"

// DefaultLimit is the sliding-window bound per test.
const DefaultLimit = 10

// storageKey is the single blob key under which the whole ledger lives.
const storageKey = "history"

// Snapshot is one partition's view: test name to ordered statuses, newest
// last.
type Snapshot map[string][]models.TestStatus

// ledgerState is the persisted shape: partition -> test -> statuses.
type ledgerState map[string]Snapshot

// Ledger maintains the bounded outcome window per (partition, test). State
// lives in a Store; concurrent runs against the same partition are
// read-modify-write with last-writer-wins, which is a documented
// limitation, not a guarantee.
type Ledger struct {
	store Store
	limit int
	log   logrus.FieldLogger
}

// NewLedger creates a Ledger over store. A non-positive limit falls back to
// DefaultLimit.
func NewLedger(store Store, limit int, log logrus.FieldLogger) *Ledger {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{store: store, limit: limit, log: log}
}

// Append pushes each outcome's status onto its test's window under
// partition, truncating the oldest entries beyond the limit, and persists
// the result before returning. Missing or corrupt prior state resets to an
// empty ledger with a warning; prior history is never half-applied.
func (l *Ledger) Append(ctx context.Context, partition string, outcomes []models.TestOutcome) error {
	state := l.loadState(ctx)

	if state[partition] == nil {
		state[partition] = Snapshot{}
	}

	for _, o := range outcomes {
		window := append(state[partition][o.Name], o.Status)
		if len(window) > l.limit {
			window = window[len(window)-l.limit:]
		}
		state[partition][o.Name] = window
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := l.store.Save(ctx, storageKey, data); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// Load returns the current window for partition. An unknown partition
// yields an empty snapshot, never an error.
func (l *Ledger) Load(ctx context.Context, partition string) (Snapshot, error) {
	state := l.loadState(ctx)
	snap := state[partition]
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// loadState reads and parses the persisted ledger, self-healing to empty on
// any anomaly.
func (l *Ledger) loadState(ctx context.Context) ledgerState {
	data, ok, err := l.store.Load(ctx, storageKey)
	if err != nil {
		l.log.WithError(err).Warn("history unreadable, resetting")
		return ledgerState{}
	}
	if !ok || len(data) == 0 {
		return ledgerState{}
	}

	var state ledgerState
	if err := json.Unmarshal(data, &state); err != nil {
		l.log.WithError(err).Warn("history corrupt, resetting")
		return ledgerState{}
	}
	if state == nil {
		state = ledgerState{}
	}
	return state
}

package resultsync

import (
	"sync"

	"github.com/agentstation/resultsync/pkg/reconcile"
)

// Hook function types for result events
type (
	// OutcomeChangedHook is called for every stored outcome changed by a merge
	OutcomeChangedHook func(change reconcile.Change)

	// BackfilledHook is called for every NO TEST entry inserted by backfill
	BackfilledHook func(platform, build string)
)

// hooks manages event callbacks for store changes
type hooks struct {
	mu               sync.RWMutex
	onOutcomeChanged []OutcomeChangedHook
	onBackfilled     []BackfilledHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnOutcomeChanged registers a callback for merged outcome changes.
// Callbacks run after the store has been saved.
func (h *hooks) OnOutcomeChanged(fn OutcomeChangedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onOutcomeChanged = append(h.onOutcomeChanged, fn)
}

// OnBackfilled registers a callback for backfilled entries
func (h *hooks) OnBackfilled(fn BackfilledHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onBackfilled = append(h.onBackfilled, fn)
}

func (h *hooks) triggerChanges(changes []reconcile.Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, change := range changes {
		for _, hook := range h.onOutcomeChanged {
			hook(change)
		}
	}
}

func (h *hooks) triggerBackfilled(platform, build string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, hook := range h.onBackfilled {
		hook(platform, build)
	}
}

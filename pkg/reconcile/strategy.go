package reconcile

import (
	"fmt"
	"strings"

	"github.com/agentstation/resultsync/pkg/results"
)

// Strategy decides which outcome a (platform, build) entry holds after a
// candidate value arrives.
type Strategy interface {
	// Name returns the strategy name
	Name() string

	// Description returns a human-readable description
	Description() string

	// Resolve returns the outcome to store and whether the candidate was
	// taken. current is results.NoTest when the entry is absent.
	Resolve(current, candidate results.Outcome) (results.Outcome, bool)
}

// baseStrategy provides common strategy functionality
type baseStrategy struct {
	name        string
	description string
}

// Name returns the strategy name
func (s *baseStrategy) Name() string {
	return s.name
}

// Description returns a human-readable description
func (s *baseStrategy) Description() string {
	return s.description
}

// PriorityStrategy takes the candidate when its priority is greater than or
// equal to the current one. Equal priority re-confirms the stored value,
// which keeps repeated merges of the same input a no-op.
//
// The order ranks OK above FAIL, so a later OK clears an earlier FAIL. That
// mixes "most complete signal wins" with "most severe wins"; it is kept for
// compatibility with existing result files.
type PriorityStrategy struct {
	baseStrategy
}

// NewPriorityStrategy creates the default priority strategy
func NewPriorityStrategy() Strategy {
	return &PriorityStrategy{
		baseStrategy: baseStrategy{
			name:        "priority",
			description: "Keeps the higher-priority outcome; equal priority overwrites",
		},
	}
}

// Resolve implements Strategy
func (s *PriorityStrategy) Resolve(current, candidate results.Outcome) (results.Outcome, bool) {
	if candidate.Priority() >= current.Priority() {
		return candidate, true
	}
	return current, false
}

// IncomingStrategy always takes the candidate. Used to force-import a
// result file that is known to be authoritative.
type IncomingStrategy struct {
	baseStrategy
}

// NewIncomingStrategy creates a strategy where incoming values always win
func NewIncomingStrategy() Strategy {
	return &IncomingStrategy{
		baseStrategy: baseStrategy{
			name:        "incoming",
			description: "Incoming outcome always overwrites",
		},
	}
}

// Resolve implements Strategy
func (s *IncomingStrategy) Resolve(_, candidate results.Outcome) (results.Outcome, bool) {
	return candidate, true
}

// Strategies returns the names of the built-in strategies.
func Strategies() []string {
	return []string{"priority", "incoming"}
}

// StrategyByName returns the built-in strategy with the given name.
func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "priority":
		return NewPriorityStrategy(), nil
	case "incoming":
		return NewIncomingStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown merge strategy %q (valid: %s)", name, strings.Join(Strategies(), ", "))
	}
}

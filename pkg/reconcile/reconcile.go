// Package reconcile merges incoming result sets into a base set using an
// outcome priority order.
//
// For every (platform, build) in the incoming set the stored value, or
// NO TEST when absent, is compared with the candidate and the strategy
// decides which one survives. Entries present only in the base set are
// never touched. Platforms and builds are visited in sorted order so the
// change list is deterministic regardless of map iteration order.
package reconcile

import (
	"fmt"

	"github.com/agentstation/resultsync/pkg/results"
)

// SourceName identifies where an incoming result set came from
type SourceName string

// String returns the string representation of a source name
func (sn SourceName) String() string {
	return string(sn)
}

// Common source names
const (
	LocalResults  SourceName = "local"
	RemoteArchive SourceName = "remote archive"
	ResultFile    SourceName = "result file"
)

// Source is a named incoming result set.
type Source struct {
	Name SourceName
	Set  results.Set
}

// Reconciler merges result sets
type Reconciler interface {
	// Merge updates base in place with incoming.
	Merge(base, incoming results.Set, source SourceName) *Result

	// MergeAll merges each source into base, in order.
	MergeAll(base results.Set, sources ...Source) *Result

	// Strategy returns the strategy in use
	Strategy() Strategy
}

// reconciler is the default implementation of Reconciler
type reconciler struct {
	strategy Strategy
	onChange []func(Change)
}

// Option configures a Reconciler
type Option func(*reconciler) error

// WithStrategy sets the merge strategy
func WithStrategy(strategy Strategy) Option {
	return func(r *reconciler) error {
		if strategy == nil {
			return fmt.Errorf("strategy cannot be nil")
		}
		r.strategy = strategy
		return nil
	}
}

// WithChangeHook registers fn to be called for every applied change.
func WithChangeHook(fn func(Change)) Option {
	return func(r *reconciler) error {
		if fn != nil {
			r.onChange = append(r.onChange, fn)
		}
		return nil
	}
}

// New creates a new Reconciler with options
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{
		strategy: NewPriorityStrategy(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Strategy returns the strategy in use
func (r *reconciler) Strategy() Strategy {
	return r.strategy
}

// Merge updates base in place with incoming.
func (r *reconciler) Merge(base, incoming results.Set, source SourceName) *Result {
	result := &Result{
		Sources:  []SourceName{source},
		Strategy: r.strategy.Name(),
	}

	for _, platform := range incoming.Platforms() {
		if _, ok := base[platform]; !ok {
			base[platform] = make(map[string]results.Outcome)
		}
		for _, build := range incoming.Builds(platform) {
			candidate := incoming[platform][build]
			current, exists := base.Get(platform, build)
			if !exists {
				current = results.NoTest
			}

			value, taken := r.strategy.Resolve(current, candidate)
			if !taken {
				result.Kept++
				continue
			}
			if exists && value == current {
				result.Confirmed++
				base.Put(platform, build, value)
				continue
			}

			base.Put(platform, build, value)
			change := Change{
				Platform: platform,
				Build:    build,
				From:     current,
				To:       value,
				Added:    !exists,
				Source:   source,
			}
			result.Changes = append(result.Changes, change)
			for _, fn := range r.onChange {
				fn(change)
			}
		}
	}

	return result
}

// MergeAll merges each source into base, in order.
func (r *reconciler) MergeAll(base results.Set, sources ...Source) *Result {
	total := &Result{Strategy: r.strategy.Name()}
	for _, src := range sources {
		total.add(r.Merge(base, src.Set, src.Name))
	}
	return total
}

// Merge merges incoming into base with the priority strategy and returns
// base.
func Merge(base, incoming results.Set) results.Set {
	if base == nil {
		base = results.New()
	}
	r := &reconciler{strategy: NewPriorityStrategy()}
	r.Merge(base, incoming, "")
	return base
}

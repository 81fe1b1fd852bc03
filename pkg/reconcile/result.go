package reconcile

import (
	"fmt"

	"github.com/agentstation/resultsync/pkg/results"
)

// Change records one entry whose stored outcome was replaced.
type Change struct {
	Platform string          `json:"platform" yaml:"platform"`
	Build    string          `json:"build" yaml:"build"`
	From     results.Outcome `json:"from" yaml:"from"`
	To       results.Outcome `json:"to" yaml:"to"`
	// Added is true when the entry did not exist before the merge.
	Added  bool       `json:"added" yaml:"added"`
	Source SourceName `json:"source,omitempty" yaml:"source,omitempty"`
}

// String returns a short human-readable form of the change
func (c Change) String() string {
	if c.Added {
		return fmt.Sprintf("%s/%s: added %s", c.Platform, c.Build, c.To)
	}
	return fmt.Sprintf("%s/%s: %s -> %s", c.Platform, c.Build, c.From, c.To)
}

// Result is the outcome of one merge.
type Result struct {
	// Changes lists entries whose value changed, in platform/build order.
	Changes []Change

	// Confirmed counts candidates taken with a value equal to the stored one.
	Confirmed int

	// Kept counts candidates rejected because the stored value ranked higher.
	Kept int

	// Sources that were merged, in merge order
	Sources []SourceName

	// Strategy used for the merge
	Strategy string
}

// HasChanges returns true if the merge changed any entry
func (r *Result) HasChanges() bool {
	return r != nil && len(r.Changes) > 0
}

// Processed returns the number of incoming entries considered.
func (r *Result) Processed() int {
	if r == nil {
		return 0
	}
	return len(r.Changes) + r.Confirmed + r.Kept
}

// Summary returns a one-line summary of the merge
func (r *Result) Summary() string {
	if r == nil {
		return "no merge performed"
	}
	return fmt.Sprintf("%d changed, %d confirmed, %d kept", len(r.Changes), r.Confirmed, r.Kept)
}

// add folds other into r.
func (r *Result) add(other *Result) {
	r.Changes = append(r.Changes, other.Changes...)
	r.Confirmed += other.Confirmed
	r.Kept += other.Kept
	r.Sources = append(r.Sources, other.Sources...)
}

package sync

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/results"
)

// Result represents the complete result of a sync cycle.
type Result struct {
	// Publish phase
	PublishSkipped bool // Publish was disabled or not configured
	Published      bool // Archive reached the remote host

	// Absorb and backfill phases; nil when the phase was skipped
	Absorb   *AbsorbReport
	Backfill *BackfillReport

	// Acceptable is the verdict on the store after the cycle
	Acceptable bool
}

// AbsorbReport describes one absorb pass over the remote drop directory.
type AbsorbReport struct {
	Processed []string         // Archives fully absorbed, in processing order
	Failed    map[string]error // Archives that failed, by name

	FilesMoved       int // Files relocated into the local tree
	FilesOverwritten int // Local files replaced by an incoming file
	FilesKept        int // Incoming files discarded because a local file existed

	Changes []reconcile.Change // Store entries changed by the merge
}

// NewAbsorbReport returns an empty report.
func NewAbsorbReport() *AbsorbReport {
	return &AbsorbReport{Failed: make(map[string]error)}
}

// HasFailures returns true if any archive failed.
func (r *AbsorbReport) HasFailures() bool {
	return r != nil && len(r.Failed) > 0
}

// Err returns an *errors.AbsorbError describing the failures, or nil.
func (r *AbsorbReport) Err() error {
	if !r.HasFailures() {
		return nil
	}
	return &errors.AbsorbError{Failures: r.Failed}
}

// FailedArchives returns the names of failed archives, sorted.
func (r *AbsorbReport) FailedArchives() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a human-readable summary of the absorb pass.
func (r *AbsorbReport) Summary() string {
	if r == nil {
		return "absorb skipped"
	}
	total := len(r.Processed) + len(r.Failed)
	if total == 0 {
		return "no archives to absorb"
	}
	summary := fmt.Sprintf("%d/%d archives absorbed, %d files moved, %d outcomes changed",
		len(r.Processed), total, r.FilesMoved, len(r.Changes))
	var extra []string
	if r.FilesOverwritten > 0 {
		extra = append(extra, fmt.Sprintf("%d overwritten", r.FilesOverwritten))
	}
	if r.FilesKept > 0 {
		extra = append(extra, fmt.Sprintf("%d kept", r.FilesKept))
	}
	if len(extra) > 0 {
		summary += " (" + strings.Join(extra, ", ") + ")"
	}
	return summary
}

// BackfillReport describes one backfill pass.
type BackfillReport struct {
	Expected int             // Expected (platform, build) pairs considered
	Added    []results.Entry // NO TEST entries inserted
}

// HasChanges returns true if backfill inserted anything.
func (r *BackfillReport) HasChanges() bool {
	return r != nil && len(r.Added) > 0
}

// Summary returns a human-readable summary of the backfill pass.
func (r *BackfillReport) Summary() string {
	if r == nil {
		return "backfill skipped"
	}
	return fmt.Sprintf("%d expected builds, %d NO TEST entries added", r.Expected, len(r.Added))
}

// Summary returns a human-readable summary of the sync cycle.
func (sr *Result) Summary() string {
	var parts []string
	switch {
	case sr.PublishSkipped:
		parts = append(parts, "publish skipped")
	case sr.Published:
		parts = append(parts, "published")
	default:
		parts = append(parts, "publish failed")
	}
	parts = append(parts, sr.Absorb.Summary(), sr.Backfill.Summary())
	verdict := "acceptable"
	if !sr.Acceptable {
		verdict = "NOT acceptable"
	}
	return strings.Join(parts, "; ") + "; results " + verdict
}

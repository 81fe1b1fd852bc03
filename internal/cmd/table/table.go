// Package table converts result data into rows for table output.
package table

import (
	"strconv"

	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/sync"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// SetToTableData lists every entry of a result set, sorted by platform then
// build. With onlyFailures set, acceptable outcomes are left out.
func SetToTableData(set results.Set, onlyFailures bool) Data {
	entries := set.Entries()
	if onlyFailures {
		entries = set.Failures()
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Platform, e.Build, e.Outcome.String()})
	}

	return Data{
		Headers:         []string{"Platform", "Build", "Outcome"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignCenter},
	}
}

// CountsToTableData summarizes a result set by outcome, in priority order.
func CountsToTableData(set results.Set) Data {
	counts := set.Counts()
	rows := make([][]string, 0, len(results.All()))
	for _, o := range results.All() {
		acceptable := "no"
		if o.Acceptable() {
			acceptable = "yes"
		}
		rows = append(rows, []string{o.String(), strconv.Itoa(counts[o]), acceptable})
	}

	return Data{
		Headers:         []string{"Outcome", "Count", "Acceptable"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignCenter},
	}
}

// ChangesToTableData lists outcome changes produced by a merge.
func ChangesToTableData(changes []reconcile.Change) Data {
	rows := make([][]string, 0, len(changes))
	for _, ch := range changes {
		from := ch.From.String()
		if ch.Added {
			from = "-"
		}
		source := string(ch.Source)
		if source == "" {
			source = "-"
		}
		rows = append(rows, []string{ch.Platform, ch.Build, from, ch.To.String(), source})
	}

	return Data{
		Headers: []string{"Platform", "Build", "From", "To", "Source"},
		Rows:    rows,
	}
}

// SyncResultToTableData renders a sync cycle report as phase rows.
func SyncResultToTableData(res *sync.Result) Data {
	publish := "failed"
	switch {
	case res.PublishSkipped:
		publish = "skipped"
	case res.Published:
		publish = "sent"
	}

	acceptable := "NOT acceptable"
	if res.Acceptable {
		acceptable = "acceptable"
	}

	return Data{
		Headers: []string{"Phase", "Status"},
		Rows: [][]string{
			{"publish", publish},
			{"absorb", res.Absorb.Summary()},
			{"backfill", res.Backfill.Summary()},
			{"results", acceptable},
		},
	}
}

package output

import (
	"io"

	"github.com/agentstation/resultsync/internal/cmd/table"
	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/sync"
)

// FormatSet writes a result set. Table output lists one row per entry;
// JSON and YAML keep the nested platform/build mapping of the store.
func FormatSet(w io.Writer, set results.Set, onlyFailures bool, format Format) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatTable, "":
		data = table.SetToTableData(set, onlyFailures)
	default:
		if onlyFailures {
			data = set.Failures()
		} else {
			data = set
		}
	}
	return formatter.Format(w, data)
}

// FormatCounts writes the number of entries per outcome.
func FormatCounts(w io.Writer, set results.Set, format Format) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatTable, "":
		data = table.CountsToTableData(set)
	default:
		counts := make(map[string]int, len(results.All()))
		for o, n := range set.Counts() {
			counts[o.String()] = n
		}
		data = counts
	}
	return formatter.Format(w, data)
}

// FormatChanges writes the outcome changes of a merge.
func FormatChanges(w io.Writer, changes []reconcile.Change, format Format) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatTable, "":
		data = table.ChangesToTableData(changes)
	default:
		if changes == nil {
			changes = []reconcile.Change{}
		}
		data = changes
	}
	return formatter.Format(w, data)
}

// FormatSyncResult writes a sync cycle report.
func FormatSyncResult(w io.Writer, res *sync.Result, format Format) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatTable, "":
		data = table.SyncResultToTableData(res)
	default:
		data = newSyncView(res)
	}
	return formatter.Format(w, data)
}

type syncView struct {
	PublishSkipped bool          `json:"publish_skipped" yaml:"publish_skipped"`
	Published      bool          `json:"published" yaml:"published"`
	Absorb         *absorbView   `json:"absorb,omitempty" yaml:"absorb,omitempty"`
	Backfill       *backfillView `json:"backfill,omitempty" yaml:"backfill,omitempty"`
	Acceptable     bool          `json:"acceptable" yaml:"acceptable"`
}

type absorbView struct {
	Processed        []string           `json:"processed" yaml:"processed"`
	Failed           map[string]string  `json:"failed,omitempty" yaml:"failed,omitempty"`
	FilesMoved       int                `json:"files_moved" yaml:"files_moved"`
	FilesOverwritten int                `json:"files_overwritten" yaml:"files_overwritten"`
	FilesKept        int                `json:"files_kept" yaml:"files_kept"`
	Changes          []reconcile.Change `json:"changes,omitempty" yaml:"changes,omitempty"`
}

type backfillView struct {
	Expected int             `json:"expected" yaml:"expected"`
	Added    []results.Entry `json:"added,omitempty" yaml:"added,omitempty"`
}

func newSyncView(res *sync.Result) syncView {
	v := syncView{
		PublishSkipped: res.PublishSkipped,
		Published:      res.Published,
		Acceptable:     res.Acceptable,
	}
	if a := res.Absorb; a != nil {
		v.Absorb = &absorbView{
			Processed:        a.Processed,
			FilesMoved:       a.FilesMoved,
			FilesOverwritten: a.FilesOverwritten,
			FilesKept:        a.FilesKept,
			Changes:          a.Changes,
		}
		if a.HasFailures() {
			v.Absorb.Failed = make(map[string]string, len(a.Failed))
			for name, err := range a.Failed {
				v.Absorb.Failed[name] = err.Error()
			}
		}
	}
	if b := res.Backfill; b != nil {
		v.Backfill = &backfillView{Expected: b.Expected, Added: b.Added}
	}
	return v
}

// FormatEntries writes a flat list of entries. Table output derives its
// columns from the entry fields.
func FormatEntries(w io.Writer, entries []results.Entry, format Format) error {
	if entries == nil {
		entries = []results.Entry{}
	}
	return NewFormatter(format).Format(w, entries)
}

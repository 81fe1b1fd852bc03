package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/results"
)

func newReconciler(t *testing.T, opts ...reconcile.Option) reconcile.Reconciler {
	t.Helper()
	r, err := reconcile.New(opts...)
	require.NoError(t, err)
	return r
}

func single(o results.Outcome) results.Set {
	return results.Set{"p": {"b": o}}
}

// TestPriorityTable checks every (stored, incoming) pair.
func TestPriorityTable(t *testing.T) {
	r := newReconciler(t)

	for _, stored := range results.All() {
		for _, incoming := range results.All() {
			t.Run(stored.String()+"<-"+incoming.String(), func(t *testing.T) {
				base := single(stored)
				r.Merge(base, single(incoming), reconcile.RemoteArchive)

				got, ok := base.Get("p", "b")
				require.True(t, ok)
				want := stored
				if incoming.Priority() > stored.Priority() {
					want = incoming
				}
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestMergeIntoAbsentEntry(t *testing.T) {
	r := newReconciler(t)
	base := results.New()

	res := r.Merge(base, results.Set{"linux": {"app": results.Skip}}, reconcile.RemoteArchive)

	o, ok := base.Get("linux", "app")
	require.True(t, ok)
	assert.Equal(t, results.Skip, o)
	require.Len(t, res.Changes, 1)
	assert.True(t, res.Changes[0].Added)
	assert.Equal(t, results.NoTest, res.Changes[0].From)
	assert.Equal(t, reconcile.RemoteArchive, res.Changes[0].Source)
}

func TestMergeCreatesEmptyPlatform(t *testing.T) {
	r := newReconciler(t)
	base := results.New()

	res := r.Merge(base, results.Set{"linux-x64": {}}, reconcile.RemoteArchive)

	assert.Equal(t, results.Set{"linux-x64": {}}, base)
	assert.False(t, res.HasChanges())
}

func TestMergeLeavesBaseOnlyEntries(t *testing.T) {
	r := newReconciler(t)
	base := results.Set{
		"linux": {"app1": results.Fail, "app2": results.OK},
		"macos": {"app1": results.Timeout},
	}

	r.Merge(base, results.Set{"linux": {"app1": results.OK}}, reconcile.RemoteArchive)

	assert.Equal(t, results.Set{
		"linux": {"app1": results.OK, "app2": results.OK},
		"macos": {"app1": results.Timeout},
	}, base)
}

func TestMergeIdempotent(t *testing.T) {
	r := newReconciler(t)
	incoming := results.Set{
		"linux": {"app1": results.Error, "app2": results.NoTest},
		"win":   {"app1": results.OK},
	}

	once := results.Set{"linux": {"app1": results.Timeout}}
	r.Merge(once, incoming, reconcile.RemoteArchive)

	twice := results.Set{"linux": {"app1": results.Timeout}}
	r.Merge(twice, incoming, reconcile.RemoteArchive)
	second := r.Merge(twice, incoming, reconcile.RemoteArchive)

	assert.Equal(t, once, twice)
	assert.False(t, second.HasChanges())
	assert.Equal(t, 3, second.Confirmed)
}

func TestMergeCommutative(t *testing.T) {
	r := newReconciler(t)
	a := results.Set{"p": {"b": results.OK}, "q": {"x": results.Error}}
	b := results.Set{"p": {"b": results.Skip}, "q": {"x": results.Fail, "y": results.Timeout}}

	ab := results.New()
	r.Merge(ab, a, "a")
	r.Merge(ab, b, "b")

	ba := results.New()
	r.Merge(ba, b, "b")
	r.Merge(ba, a, "a")

	assert.Equal(t, ab, ba)
	o, _ := ab.Get("p", "b")
	assert.Equal(t, results.OK, o)
}

func TestMergeDoesNotAliasIncoming(t *testing.T) {
	r := newReconciler(t)
	incoming := results.Set{"p": {"b": results.Skip}}
	base := results.New()

	r.Merge(base, incoming, reconcile.RemoteArchive)
	base.Put("p", "b", results.Fail)

	o, _ := incoming.Get("p", "b")
	assert.Equal(t, results.Skip, o)
}

func TestMergeResultCounts(t *testing.T) {
	r := newReconciler(t)
	base := results.Set{"p": {"keep": results.OK, "same": results.Fail, "up": results.Skip}}
	incoming := results.Set{"p": {"keep": results.Error, "same": results.Fail, "up": results.Timeout, "new": results.NoTest}}

	res := r.Merge(base, incoming, reconcile.RemoteArchive)

	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, 1, res.Confirmed)
	require.Len(t, res.Changes, 2)
	// sorted by build
	assert.Equal(t, "new", res.Changes[0].Build)
	assert.Equal(t, "up", res.Changes[1].Build)
	assert.Equal(t, 4, res.Processed())
	assert.Equal(t, "2 changed, 1 confirmed, 1 kept", res.Summary())
	assert.Equal(t, "p/up: SKIP -> TIMEOUT", res.Changes[1].String())
}

func TestChangeHook(t *testing.T) {
	var seen []reconcile.Change
	r := newReconciler(t, reconcile.WithChangeHook(func(c reconcile.Change) {
		seen = append(seen, c)
	}))

	base := single(results.Fail)
	r.Merge(base, single(results.Timeout), reconcile.RemoteArchive)
	assert.Empty(t, seen)

	r.Merge(base, single(results.OK), reconcile.RemoteArchive)
	require.Len(t, seen, 1)
	assert.Equal(t, results.Fail, seen[0].From)
	assert.Equal(t, results.OK, seen[0].To)
}

func TestMergeAll(t *testing.T) {
	r := newReconciler(t)
	base := results.New()

	res := r.MergeAll(base,
		reconcile.Source{Name: "node-1", Set: single(results.Error)},
		reconcile.Source{Name: "node-2", Set: single(results.Fail)},
		reconcile.Source{Name: "node-3", Set: single(results.Skip)},
	)

	o, _ := base.Get("p", "b")
	assert.Equal(t, results.Fail, o)
	assert.Len(t, res.Changes, 2)
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, []reconcile.SourceName{"node-1", "node-2", "node-3"}, res.Sources)
}

func TestIncomingStrategy(t *testing.T) {
	r := newReconciler(t, reconcile.WithStrategy(reconcile.NewIncomingStrategy()))
	base := single(results.OK)

	r.Merge(base, single(results.NoTest), reconcile.ResultFile)

	o, _ := base.Get("p", "b")
	assert.Equal(t, results.NoTest, o)
	assert.Equal(t, "incoming", r.Strategy().Name())
}

func TestStrategyByName(t *testing.T) {
	for _, name := range []string{"", "priority", " Priority ", "incoming"} {
		s, err := reconcile.StrategyByName(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, s.Description())
	}

	_, err := reconcile.StrategyByName("worst-wins")
	assert.Error(t, err)

	_, err = reconcile.New(reconcile.WithStrategy(nil))
	assert.Error(t, err)
}

func TestPackageMerge(t *testing.T) {
	got := reconcile.Merge(nil, results.Set{"p": {"b": results.Timeout}})
	assert.Equal(t, results.Set{"p": {"b": results.Timeout}}, got)
}

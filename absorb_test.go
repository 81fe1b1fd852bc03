package resultsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/sync"
)

func absorbConfig() Config {
	cfg := testConfig()
	cfg.UseRemoteResults = true
	return cfg
}

func TestAbsorbDisabled(t *testing.T) {
	c, fs, _ := newTestClient(t, testConfig())
	dropArchive(t, fs, "a.zip", map[string]string{"results.json": `{"p": {"b": "OK"}}`})

	assert.Nil(t, c.Absorb(context.Background()))
	assert.Empty(t, loadSet(t, fs, "local/results.json"))
}

func TestAbsorbNoRemoteDir(t *testing.T) {
	c, _, _ := newTestClient(t, absorbConfig())

	report := c.Absorb(context.Background())
	require.NotNil(t, report)
	assert.Empty(t, report.Processed)
	assert.False(t, report.HasFailures())
}

func TestAbsorbIsolatesFailingArchive(t *testing.T) {
	c, fs, tl := newTestClient(t, absorbConfig())
	saveSet(t, fs, "local/results.json", results.Set{"linux": {"app1": results.Error}})

	dropArchive(t, fs, "node-1.zip", map[string]string{
		"results.json":         `{"linux": {"app1": "FAIL"}, "macos": {"app1": "SKIP"}}`,
		"logs/linux/app1.log":  "node-1 log\n",
		"results/linux/app1.t": "node-1 tap\n",
	})
	dropArchive(t, fs, "node-2.zip", map[string]string{
		"results.json":        `{"linux": {"app1": "BROKEN"}}`,
		"logs/linux/app9.log": "node-2 log\n",
	})
	dropArchive(t, fs, "node-3.zip", map[string]string{
		"results.json":        `{"win": {"app2": "TIMEOUT"}}`,
		"logs/win/app2.log":   "node-3 log\n",
	})

	report := c.Absorb(context.Background())
	require.NotNil(t, report)

	assert.Equal(t, []string{"node-1.zip", "node-3.zip"}, report.Processed)
	require.Contains(t, report.Failed, "node-2.zip")
	assert.True(t, errors.IsCorruptStore(report.Failed["node-2.zip"]))
	assert.Equal(t, 3, report.FilesMoved)
	assert.Len(t, report.Changes, 3)

	assert.Equal(t, results.Set{
		"linux": {"app1": results.Fail},
		"macos": {"app1": results.Skip},
		"win":   {"app2": results.Timeout},
	}, loadSet(t, fs, "local/results.json"))

	assert.Equal(t, "node-1 log\n", readFile(t, fs, "local/logs/linux/app1.log"))
	assert.Equal(t, "node-1 tap\n", readFile(t, fs, "local/results/linux/app1.t"))
	assert.Equal(t, "node-3 log\n", readFile(t, fs, "local/logs/win/app2.log"))
	assert.False(t, exists(fs, "local/logs/linux/app9.log"), "files of a rejected archive are not moved")
	assert.False(t, exists(fs, "temp"), "scratch directory must be removed")

	tl.AssertContains(t, "Failed to absorb archive, continuing")

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node-2.zip")
}

func TestAbsorbUnreadableArchive(t *testing.T) {
	c, fs, _ := newTestClient(t, absorbConfig())
	writeFile(t, fs, "remote/a.zip", "not a zip")
	dropArchive(t, fs, "b.zip", map[string]string{"results.json": `{"p": {"b": "OK"}}`})
	writeFile(t, fs, "remote/notes.txt", "ignored")

	report := c.Absorb(context.Background())

	assert.Equal(t, []string{"b.zip"}, report.Processed)
	assert.True(t, errors.IsArchive(report.Failed["a.zip"]))
	assert.False(t, exists(fs, "temp"))
}

func TestAbsorbMissingPayload(t *testing.T) {
	c, fs, _ := newTestClient(t, absorbConfig())
	dropArchive(t, fs, "a.zip", map[string]string{"logs/x.log": "x"})

	report := c.Absorb(context.Background())

	assert.True(t, errors.IsNotFound(report.Failed["a.zip"]))
	assert.False(t, exists(fs, "local/logs/x.log"))
}

func TestAbsorbConflictPolicy(t *testing.T) {
	tests := []struct {
		policy      string
		wantContent string
		overwritten int
		kept        int
	}{
		{policy: "overwrite", wantContent: "remote\n", overwritten: 1},
		{policy: "keep", wantContent: "local\n", kept: 1},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := absorbConfig()
			cfg.AbsorbConflict = tt.policy
			c, fs, tl := newTestClient(t, cfg)
			writeFile(t, fs, "local/logs/app.log", "local\n")
			dropArchive(t, fs, "a.zip", map[string]string{
				"results.json": `{}`,
				"logs/app.log": "remote\n",
			})

			report := c.Absorb(context.Background())

			require.Equal(t, []string{"a.zip"}, report.Processed)
			assert.Equal(t, tt.wantContent, readFile(t, fs, "local/logs/app.log"))
			assert.Equal(t, tt.overwritten, report.FilesOverwritten)
			assert.Equal(t, tt.kept, report.FilesKept)
			tl.AssertContains(t, "local/logs/app.log")
		})
	}
}

func TestAbsorbTriggersHooks(t *testing.T) {
	c, fs, _ := newTestClient(t, absorbConfig())
	saveSet(t, fs, "local/results.json", results.Set{"p": {"b": results.Fail}})
	dropArchive(t, fs, "a.zip", map[string]string{"results.json": `{"p": {"b": "OK", "c": "SKIP"}}`})

	var changes []reconcile.Change
	c.OnOutcomeChanged(func(ch reconcile.Change) { changes = append(changes, ch) })

	c.Absorb(context.Background())

	require.Len(t, changes, 2)
	assert.Equal(t, reconcile.SourceName("a.zip"), changes[0].Source)
	assert.Equal(t, results.Fail, changes[0].From)
	assert.Equal(t, results.OK, changes[0].To)
}

func TestAbsorbIsIdempotent(t *testing.T) {
	c, fs, _ := newTestClient(t, absorbConfig())
	dropArchive(t, fs, "a.zip", map[string]string{"results.json": `{"p": {"b": "ERROR"}}`})

	first := c.Absorb(context.Background())
	after := loadSet(t, fs, "local/results.json")
	second := c.Absorb(context.Background())

	assert.Len(t, first.Changes, 1)
	assert.Empty(t, second.Changes)
	assert.Equal(t, after, loadSet(t, fs, "local/results.json"))
}

func TestAbsorbCorruptLocalStore(t *testing.T) {
	c, fs, _ := newTestClient(t, absorbConfig())
	writeFile(t, fs, "local/results.json", "{not json")
	dropArchive(t, fs, "a.zip", map[string]string{
		"results.json": `{"p": {"b": "OK"}}`,
		"logs/a.log":   "a\n",
	})
	dropArchive(t, fs, "b.zip", map[string]string{
		"results.json": `{"p": {"b": "FAIL"}}`,
		"logs/b.log":   "b\n",
	})

	report := c.Absorb(context.Background())
	require.NotNil(t, report)

	assert.True(t, errors.IsCorruptStore(report.Failed[c.store.Path()]))
	assert.Len(t, report.Failed, 1)
	assert.Empty(t, report.Processed)
	assert.Zero(t, report.FilesMoved)
	assert.False(t, exists(fs, "local/logs/a.log"))
	assert.False(t, exists(fs, "local/logs/b.log"))
	assert.True(t, exists(fs, "remote/a.zip"))
	assert.Equal(t, "{not json", readFile(t, fs, "local/results.json"), "a corrupt store is never overwritten")
}

func TestAbsorbWithKeepStrategyFromSync(t *testing.T) {
	c, fs, _ := newTestClient(t, absorbConfig())
	saveSet(t, fs, "local/results.json", results.Set{"p": {"b": results.OK}})
	dropArchive(t, fs, "a.zip", map[string]string{"results.json": `{"p": {"b": "FAIL"}}`})

	res, err := c.Sync(context.Background(), nil, sync.WithStrategy("incoming"))
	require.NoError(t, err)

	assert.Len(t, res.Absorb.Changes, 1)
	assert.False(t, res.Acceptable)
}

package cycle

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/resultsync"
	"github.com/agentstation/resultsync/internal/archive"
	"github.com/agentstation/resultsync/internal/builds"
	"github.com/agentstation/resultsync/internal/cmd/application"
	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/store"
)

func testConfig() resultsync.Config {
	cfg := resultsync.DefaultConfig()
	cfg.LocalDir = "local"
	cfg.RemoteDir = "remote"
	cfg.ArchiveDir = "archive"
	cfg.TempDir = "temp"
	cfg.Builds = []builds.Build{{Platform: "linux", Build: "app1"}, {Platform: "macos", Build: "app1"}}
	return cfg
}

func newMock(cfg resultsync.Config, fs billy.Filesystem, extra ...resultsync.Option) *application.Mock {
	return &application.Mock{
		ClientFunc: func(opts ...resultsync.Option) (*resultsync.Client, error) {
			all := append([]resultsync.Option{
				resultsync.WithFilesystem(fs),
				resultsync.WithLogger(zerolog.Nop()),
			}, extra...)
			return resultsync.New(cfg, append(all, opts...)...)
		},
		OutputFormatFunc: func() string { return "json" },
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func dropArchive(t *testing.T, fs billy.Filesystem, name, payload string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, "stage/results.json", []byte(payload), 0o644))
	require.NoError(t, archive.NewZip(fs).Pack("stage", "stage", "remote/"+name))
	require.NoError(t, util.RemoveAll(fs, "stage"))
}

func saveSet(t *testing.T, fs billy.Filesystem, set results.Set) {
	t.Helper()
	require.NoError(t, store.New(fs, "local/results.json").Save(set))
}

func loadSet(t *testing.T, fs billy.Filesystem) results.Set {
	t.Helper()
	set, err := store.New(fs, "local/results.json").Load()
	require.NoError(t, err)
	return set
}

func TestSyncCommand(t *testing.T) {
	fs := memfs.New()
	cfg := testConfig()
	cfg.UseRemoteResults = true
	saveSet(t, fs, results.Set{"linux": {"app1": results.Fail}})
	dropArchive(t, fs, "peer.zip", `{"linux": {"app1": "OK"}}`)

	out, err := run(t, NewSyncCommand(newMock(cfg, fs)))
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, true, report["acceptable"])
	assert.Equal(t, true, report["publish_skipped"])

	assert.Equal(t, results.Set{
		"linux": {"app1": results.OK},
		"macos": {"app1": results.NoTest},
	}, loadSet(t, fs))
}

func TestSyncCommandNotAcceptable(t *testing.T) {
	fs := memfs.New()
	saveSet(t, fs, results.Set{"linux": {"app1": results.Error}})

	_, err := run(t, NewSyncCommand(newMock(testConfig(), fs)), "--skip-backfill")
	assert.True(t, errors.IsNotAcceptable(err))

	_, err = run(t, NewSyncCommand(newMock(testConfig(), fs)), "--skip-backfill", "--no-check")
	assert.NoError(t, err)
}

func TestSyncFlagsOptions(t *testing.T) {
	cmd := NewSyncCommand(newMock(testConfig(), memfs.New()))
	require.NoError(t, cmd.ParseFlags([]string{"--publish-timeout", "5s", "--conflict", "keep"}))

	flags := &SyncFlags{PublishTimeout: 5 * time.Second, Conflict: "keep"}
	assert.Len(t, flags.Options(cmd), 6)
}

func TestAbsorbCommand(t *testing.T) {
	fs := memfs.New()
	dropArchive(t, fs, "a.zip", `{"linux": {"app1": "SKIP"}}`)
	require.NoError(t, util.WriteFile(fs, "remote/b.zip", []byte("not a zip"), 0o644))

	out, err := run(t, NewAbsorbCommand(newMock(testConfig(), fs)))
	require.NoError(t, err)
	assert.Contains(t, out, "use_remote_results is off")

	out, err = run(t, NewAbsorbCommand(newMock(testConfig(), fs)), "--force")
	require.Error(t, err, "b.zip is not an archive")
	assert.Contains(t, err.Error(), "b.zip")
	assert.Contains(t, out, `"to": "SKIP"`)
	assert.Equal(t, results.Set{"linux": {"app1": results.Skip}}, loadSet(t, fs))
}

func TestBackfillCommand(t *testing.T) {
	fs := memfs.New()
	saveSet(t, fs, results.Set{"linux_x64": {"app1": results.OK}})

	out, err := run(t, NewBackfillCommand(newMock(testConfig(), fs)))
	require.NoError(t, err)

	var added []results.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, []results.Entry{{Platform: "macos", Build: "app1", Outcome: results.NoTest}}, added)
}

func TestPublishCommand(t *testing.T) {
	fs := memfs.New()
	_, err := run(t, NewPublishCommand(newMock(testConfig(), fs)))
	assert.True(t, errors.IsConfig(err))

	cfg := testConfig()
	cfg.SendToRemote = &resultsync.RemoteConfig{Login: "l", Password: "p", Host: "results.example.com", Archive: "node-1", InsecureIgnoreHostKey: true}
	sender := &stubSender{}
	saveSet(t, fs, results.Set{"linux": {"app1": results.OK}})

	out, err := run(t, NewPublishCommand(newMock(cfg, fs, resultsync.WithSender(sender))))
	require.NoError(t, err)
	assert.Contains(t, out, "results.example.com")
	assert.Equal(t, "node-1.zip", sender.name)

	sender.err = errors.New("connection refused")
	_, err = run(t, NewPublishCommand(newMock(cfg, fs, resultsync.WithSender(sender))))
	assert.True(t, errors.IsTransport(err))
}

func TestArchiveCommand(t *testing.T) {
	fs := memfs.New()
	saveSet(t, fs, results.Set{"linux": {"app1": results.OK}})
	at := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	out, err := run(t, NewArchiveCommand(newMock(testConfig(), fs, resultsync.WithClock(at))))
	require.NoError(t, err)
	assert.Equal(t, "archive/results_20250102_030405.zip\n", out)
}

package resultsync

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/resultsync/internal/archive"
	"github.com/agentstation/resultsync/pkg/logging"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/store"
)

// fakeSender records deliveries or fails with err.
type fakeSender struct {
	err       error
	calls     int
	name      string
	remoteDir string
	payload   []byte
	deadline  bool
}

func (f *fakeSender) Send(ctx context.Context, name string, r io.Reader, remoteDir string) error {
	f.calls++
	f.name = name
	f.remoteDir = remoteDir
	_, f.deadline = ctx.Deadline()
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.payload = data
	return f.err
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LocalDir = "local"
	cfg.RemoteDir = "remote"
	cfg.ArchiveDir = "archive"
	cfg.TempDir = "temp"
	return cfg
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) (*Client, billy.Filesystem, *logging.TestLogger) {
	t.Helper()
	fs := memfs.New()
	tl := logging.NewTestLogger(t)
	opts = append([]Option{WithFilesystem(fs), WithLogger(*tl.Logger)}, opts...)
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c, fs, tl
}

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fs billy.Filesystem, path string) string {
	t.Helper()
	data, err := util.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func saveSet(t *testing.T, fs billy.Filesystem, path string, set results.Set) {
	t.Helper()
	require.NoError(t, store.New(fs, path).Save(set))
}

func loadSet(t *testing.T, fs billy.Filesystem, path string) results.Set {
	t.Helper()
	set, err := store.New(fs, path).Load()
	require.NoError(t, err)
	return set
}

// dropArchive packs files into remote/<name> the way a peer's Publish would.
func dropArchive(t *testing.T, fs billy.Filesystem, name string, files map[string]string) {
	t.Helper()
	stage := "stage-" + name
	for path, content := range files {
		writeFile(t, fs, stage+"/"+path, content)
	}
	require.NoError(t, archive.NewZip(fs).Pack(stage, stage, "remote/"+name))
	require.NoError(t, util.RemoveAll(fs, stage))
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

func exists(fs billy.Filesystem, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

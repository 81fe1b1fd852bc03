package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/resultsync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Warn().Str("archive", "node-1.zip").Msg("Absorb failed")

	assert.Contains(t, buf.String(), `"archive":"node-1.zip"`)
	assert.Contains(t, buf.String(), "Absorb failed")
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithPlatform(ctx, "ubuntu_20.04")

	logging.Ctx(ctx).Info().Msg("test message")

	events := tl.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "ubuntu_20.04", events[0]["platform"])
	assert.Equal(t, "test message", events[0]["message"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // exercising the nil guard
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		config   *logging.Config
		contains []string
		excludes []string
	}{
		{
			name:     "debug level",
			config:   &logging.Config{Level: "debug", Format: "json", Output: "discard"},
			contains: []string{`"level":"debug"`, `"level":"info"`},
		},
		{
			name:     "error level only",
			config:   &logging.Config{Level: "error", Format: "json", Output: "discard"},
			contains: []string{`"level":"error"`},
			excludes: []string{`"level":"info"`},
		},
		{
			name:     "warning alias",
			config:   &logging.Config{Level: "WARNING", Format: "json", Output: "discard"},
			contains: []string{`"level":"error"`},
			excludes: []string{`"level":"info"`},
		},
		{
			name:     "unknown level falls back to info",
			config:   &logging.Config{Level: "chatty", Format: "json", Output: "discard"},
			contains: []string{`"level":"info"`},
			excludes: []string{`"level":"debug"`},
		},
		{
			name:     "nil config logs at info",
			contains: []string{`"level":"info"`},
			excludes: []string{`"level":"debug"`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config).Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			for _, s := range tc.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestConfigurationFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultsync.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{Format: "json", Output: path})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}

func TestFromFunc(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var lines []string
	logger := logging.FromFunc(func(msg string) { lines = append(lines, msg) })

	logger.Warn().Str("archive", "node-2.zip").Int("files", 3).Msg("Absorb failed")

	require.Len(t, lines, 1)
	assert.Equal(t, "WARN Absorb failed archive=node-2.zip files=3", lines[0])
}

func TestFromFuncNil(t *testing.T) {
	logger := logging.FromFunc(nil)
	assert.NotPanics(t, func() { logger.Error().Msg("dropped") })
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Error().Str("phase", "absorb").Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertNotContains(t, "message 3")

	events := tl.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[1]["level"])
	assert.Equal(t, "absorb", events[1]["phase"])
}

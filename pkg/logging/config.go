package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/resultsync/pkg/constants"
)

// Config selects level, encoding and destination of a logger. The zero
// value logs at info to stderr, console text on a terminal.
type Config struct {
	Level string // trace, debug, info, warn, error, off

	// Format is json, console or auto.
	Format string

	// Output is stderr, stdout, discard or a file path, appended to.
	Output string

	NoColor   bool
	AddCaller bool
}

// NewLoggerFromConfig builds a logger and sets zerolog's global level to
// match. A nil cfg is the zero Config.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(cfg.writer()).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func (cfg *Config) writer() io.Writer {
	out, tty := openOutput(cfg.Output)

	switch strings.ToLower(cfg.Format) {
	case "json":
		return out
	case "console", "pretty":
	default:
		if !tty {
			return out
		}
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
}

// openOutput resolves the destination and whether it is a terminal. A file
// that cannot be opened falls back to stderr.
func openOutput(name string) (io.Writer, bool) {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr, isatty()
	case "stdout":
		return os.Stdout, false
	case "discard", "none":
		return io.Discard, false
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, isatty()
	}
	return f, false
}

func parseLevel(level string) zerolog.Level {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "", "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off", "none", "disabled":
		return zerolog.Disabled
	default:
		if parsed, err := zerolog.ParseLevel(l); err == nil {
			return parsed
		}
		return zerolog.InfoLevel
	}
}

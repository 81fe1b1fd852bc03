// Package logging configures the zerolog loggers used by resultsync.
//
// The default logger writes to stderr, as console text on a terminal and as
// JSON lines otherwise. LOG_LEVEL, LOG_FORMAT and NO_COLOR tune it; DEBUG
// turns on debug level when LOG_LEVEL is unset.
//
//	ctx := logging.WithLogger(ctx, &logger)
//	logging.Ctx(ctx).Warn().Str("archive", name).Msg("Absorb failed")
package logging

import (
	"os"

	goisatty "github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(envConfig())

func envConfig() *Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	return &Config{
		Level:   level,
		Format:  os.Getenv("LOG_FORMAT"),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Warn starts a warning on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func isatty() bool {
	fd := os.Stderr.Fd()
	return goisatty.IsTerminal(fd) || goisatty.IsCygwinTerminal(fd)
}

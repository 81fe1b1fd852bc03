package resultsync

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/agentstation/resultsync/internal/archive"
	"github.com/agentstation/resultsync/internal/transport"
	"github.com/agentstation/resultsync/pkg/logging"
	"github.com/agentstation/resultsync/pkg/reconcile"
)

// Option is a function that configures a Client
type Option func(*options) error

// options holds the collaborators a Client is wired with.
type options struct {
	logger *zerolog.Logger
	fs     billy.Filesystem
	sender transport.Sender
	codec  archive.Codec
	clock  func() time.Time

	strategy reconcile.Strategy
}

// WithLogger configures the logger used for phase progress and soft failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = &logger
		return nil
	}
}

// WithLogFunc routes every log line to fn as a single formatted string.
func WithLogFunc(fn logging.Func) Option {
	return func(o *options) error {
		if fn == nil {
			return fmt.Errorf("log function cannot be nil")
		}
		logger := logging.FromFunc(fn)
		o.logger = &logger
		return nil
	}
}

// WithFilesystem configures the filesystem every path is resolved against.
// Paths are used as given; the default OS filesystem resolves them against
// the working directory.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(o *options) error {
		if fs == nil {
			return fmt.Errorf("filesystem cannot be nil")
		}
		o.fs = fs
		return nil
	}
}

// WithSender configures the archive transport used by Publish.
func WithSender(sender transport.Sender) Option {
	return func(o *options) error {
		o.sender = sender
		return nil
	}
}

// WithCodec configures the archive codec.
func WithCodec(codec archive.Codec) Option {
	return func(o *options) error {
		o.codec = codec
		return nil
	}
}

// WithClock configures the time source used to name retention archives.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.clock = now
		return nil
	}
}

// WithMergeStrategy overrides the merge_strategy of the configuration.
func WithMergeStrategy(strategy reconcile.Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return fmt.Errorf("merge strategy cannot be nil")
		}
		o.strategy = strategy
		return nil
	}
}

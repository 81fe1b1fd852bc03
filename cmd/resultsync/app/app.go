// Package app provides the application context and dependency management
// for the resultsync CLI. It centralizes configuration, logging and the
// lazily built resultsync client.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/resultsync"
	"github.com/agentstation/resultsync/pkg/errors"
)

// App represents the resultsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client (lazy-initialized, singleton)
	mu     sync.RWMutex
	client *resultsync.Client
	extra  []resultsync.Option
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and the default config file
// locations; the --config flag may replace it before a command runs.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the resultsync client. Without options the client is
// created once and cached; with options a new client is built each call.
func (a *App) Client(opts ...resultsync.Option) (*resultsync.Client, error) {
	if len(opts) > 0 {
		return a.newClient(opts...)
	}

	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *App) newClient(opts ...resultsync.Option) (*resultsync.Client, error) {
	all := append([]resultsync.Option{resultsync.WithLogger(*a.logger)}, a.extra...)
	all = append(all, opts...)

	c, err := resultsync.New(a.config.Sync, all...)
	if err != nil {
		return nil, errors.NewConfigError("client", "cannot create resultsync client", err)
	}
	return c, nil
}

// reset drops the cached client after the configuration changed.
func (a *App) reset() {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClientOptions adds options applied to every client the app builds
// (useful for testing with an in-memory filesystem).
func WithClientOptions(opts ...resultsync.Option) Option {
	return func(a *App) error {
		a.extra = append(a.extra, opts...)
		return nil
	}
}

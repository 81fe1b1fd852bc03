// Package resultsync assembles one authoritative result set from test runs
// on several machines.
//
// A sync cycle has three phases, always run in this order:
//
//   - Publish packs the local result directory and sends it to a remote
//     drop directory over SFTP.
//   - Absorb unpacks every archive found in the local drop directory, moves
//     its logs and result files into the local tree and merges its result
//     set into the store.
//   - Backfill inserts NO TEST entries for expected builds whose platform
//     never reported.
//
// Publish and Absorb failures are soft: they are logged and the cycle
// continues.
package resultsync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"

	"github.com/agentstation/resultsync/internal/archive"
	"github.com/agentstation/resultsync/internal/builds"
	"github.com/agentstation/resultsync/internal/transport"
	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/logging"
	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/store"
	"github.com/agentstation/resultsync/pkg/sync"
)

// Client runs sync cycles against one local result directory.
type Client struct {
	cfg        Config
	options    options
	log        zerolog.Logger
	store      *store.Store
	reconciler reconcile.Reconciler
	hooks      *hooks

	// absPaths is set when the client runs on the host filesystem
	absPaths bool
}

// New validates cfg and wires a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	absPaths := o.fs == nil
	if absPaths {
		if err := cfg.resolve(); err != nil {
			return nil, err
		}
		o.fs = osfs.New("/")
	} else {
		cfg.clean()
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	if o.codec == nil {
		o.codec = archive.NewZip(o.fs)
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.sender == nil && cfg.SendToRemote != nil {
		r := cfg.SendToRemote
		o.sender = &transport.SSH{
			Credentials: transport.Credentials{
				Login:    r.Login,
				Password: r.Password,
				Host:     r.Host,
				Port:     r.Port,
			},
			KnownHostsPath:        r.KnownHosts,
			InsecureIgnoreHostKey: r.InsecureIgnoreHostKey,
			DialTimeout:           constants.DialTimeout,
		}
	}

	strategy := o.strategy
	if strategy == nil {
		var err error
		if strategy, err = reconcile.StrategyByName(cfg.MergeStrategy); err != nil {
			return nil, errors.NewConfigError("merge_strategy", err.Error(), err)
		}
	}
	rec, err := reconcile.New(reconcile.WithStrategy(strategy))
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:        cfg,
		options:    o,
		log:        *o.logger,
		store:      store.New(o.fs, cfg.ResultsFile),
		reconciler: rec,
		hooks:      newHooks(),
		absPaths:   absPaths,
	}, nil
}

// Config returns the validated configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// OnOutcomeChanged registers a callback for merged outcome changes.
func (c *Client) OnOutcomeChanged(fn OutcomeChangedHook) {
	c.hooks.OnOutcomeChanged(fn)
}

// OnBackfilled registers a callback for backfilled entries.
func (c *Client) OnBackfilled(fn BackfilledHook) {
	c.hooks.OnBackfilled(fn)
}

// Results loads the persisted result set.
func (c *Client) Results() (results.Set, error) {
	return c.store.Load()
}

// Acceptable reports whether every stored outcome is NO TEST, SKIP or OK.
func (c *Client) Acceptable() (bool, error) {
	return c.store.Acceptable()
}

// Merge folds result sets into the store and persists it.
func (c *Client) Merge(sources ...reconcile.Source) (*reconcile.Result, error) {
	var res *reconcile.Result
	err := c.store.Update(func(set results.Set) error {
		res = c.reconciler.MergeAll(set, sources...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.hooks.triggerChanges(res.Changes)
	c.log.Info().
		Int("sources", len(sources)).
		Str("summary", res.Summary()).
		Msg("Merged result sets")
	return res, nil
}

// ReadFile decodes a result file outside the store, such as a set produced
// by another machine. A missing file is an error.
func (c *Client) ReadFile(path string) (results.Set, error) {
	if c.absPaths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, errors.WrapIO("resolve", path, err)
		}
		path = abs
	} else {
		path = filepath.Clean(path)
	}

	data, err := util.ReadFile(c.options.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("results file", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return store.Decode(path, data)
}

// MergeFiles reads every result file and merges them into the store in
// argument order. Nothing is merged when any file cannot be read.
func (c *Client) MergeFiles(paths ...string) (*reconcile.Result, error) {
	sources := make([]reconcile.Source, 0, len(paths))
	for _, p := range paths {
		set, err := c.ReadFile(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, reconcile.Source{Name: reconcile.SourceName(filepath.Base(p)), Set: set})
	}
	return c.Merge(sources...)
}

// Enumerator returns the build enumerator described by the configuration.
// With both a builds list and a commands URL the static builds come first,
// followed by the fetched ones not already listed.
func (c *Client) Enumerator() (builds.Enumerator, error) {
	static := builds.Static(c.cfg.Builds)
	if c.cfg.CommandsURL == "" && len(static) > 0 {
		return static, nil
	}

	auth, err := transport.ParseAuth(c.cfg.CommandsAuth)
	if err != nil {
		return nil, errors.NewConfigError("commands_auth", err.Error(), err)
	}
	remote := builds.NewHTTP(c.cfg.CommandsURL, transport.New(auth, c.cfg.CommandsToken))
	if len(static) == 0 {
		return remote, nil
	}
	return builds.Chain{static, remote}, nil
}

// syncOptions returns the per-cycle defaults taken from the configuration.
func (c *Client) syncOptions(opts ...sync.Option) (*sync.Options, error) {
	options := sync.Defaults()
	options.PublishTimeout = c.cfg.PublishTimeout
	options.Conflict = sync.ConflictPolicy(c.cfg.AbsorbConflict)
	options.Strategy = c.reconciler.Strategy().Name()
	options.Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// reconcilerFor returns the configured reconciler, or a new one when the
// cycle asks for a different strategy.
func (c *Client) reconcilerFor(name string) (reconcile.Reconciler, error) {
	strategy, err := reconcile.StrategyByName(name)
	if err != nil {
		return nil, err
	}
	if strategy.Name() == c.reconciler.Strategy().Name() {
		return c.reconciler, nil
	}
	return reconcile.New(reconcile.WithStrategy(strategy))
}

func (c *Client) phaseLogger(phase string) zerolog.Logger {
	return c.log.With().Str("phase", phase).Logger()
}

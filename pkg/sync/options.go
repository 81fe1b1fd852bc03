// Package sync provides options and reports for one result sync cycle:
// publish, absorb and backfill.
package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/reconcile"
)

// ConflictPolicy decides what happens when an absorbed file has the same
// name as a local one.
type ConflictPolicy string

const (
	// ConflictOverwrite replaces the local file (last write wins).
	ConflictOverwrite ConflictPolicy = "overwrite"
	// ConflictKeep leaves the local file and discards the incoming one.
	ConflictKeep ConflictPolicy = "keep"
)

// ParseConflictPolicy parses a policy name. Empty means overwrite.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConflictOverwrite:
		return ConflictOverwrite, nil
	case ConflictKeep:
		return ConflictKeep, nil
	default:
		return "", &errors.ValidationError{
			Field:   "absorb_conflict",
			Value:   s,
			Message: fmt.Sprintf("unknown conflict policy %q (valid: overwrite, keep)", s),
		}
	}
}

// Options controls one sync cycle in Client.Sync().
type Options struct {
	// Phase control
	SkipPublish  bool // Do not package and send local results
	SkipAbsorb   bool // Do not consume archives from the remote drop directory
	SkipBackfill bool // Do not insert NO TEST entries for missing builds
	ForceAbsorb  bool // Absorb even when use_remote_results is off

	// Publish control
	PublishTimeout time.Duration // Upper bound for the transfer

	// Absorb control
	Conflict ConflictPolicy // Same-name file handling when moving logs/results
	Strategy string         // Merge strategy name (see reconcile.StrategyByName)
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		SkipPublish:    false,
		SkipAbsorb:     false,
		SkipBackfill:   false,
		PublishTimeout: constants.PublishTimeout,
		Conflict:       ConflictOverwrite,
		Strategy:       "priority",
	}
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.PublishTimeout < 0 {
		return &errors.ValidationError{
			Field:   "PublishTimeout",
			Value:   s.PublishTimeout,
			Message: "timeout must be non-negative",
		}
	}
	if _, err := ParseConflictPolicy(string(s.Conflict)); err != nil {
		return err
	}
	if _, err := reconcile.StrategyByName(s.Strategy); err != nil {
		return &errors.ValidationError{
			Field:   "Strategy",
			Value:   s.Strategy,
			Message: err.Error(),
		}
	}
	return nil
}

// WithSkipPublish configures whether the publish phase runs.
func WithSkipPublish(skip bool) Option {
	return func(opts *Options) {
		opts.SkipPublish = skip
	}
}

// WithSkipAbsorb configures whether the absorb phase runs.
func WithSkipAbsorb(skip bool) Option {
	return func(opts *Options) {
		opts.SkipAbsorb = skip
	}
}

// WithSkipBackfill configures whether the backfill phase runs.
func WithSkipBackfill(skip bool) Option {
	return func(opts *Options) {
		opts.SkipBackfill = skip
	}
}

// WithForceAbsorb runs the absorb phase regardless of use_remote_results.
func WithForceAbsorb(force bool) Option {
	return func(opts *Options) {
		opts.ForceAbsorb = force
	}
}

// WithPublishTimeout configures the transfer timeout.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.PublishTimeout = timeout
	}
}

// WithConflictPolicy configures same-name file handling during absorb.
func WithConflictPolicy(policy ConflictPolicy) Option {
	return func(opts *Options) {
		opts.Conflict = policy
	}
}

// WithStrategy configures the merge strategy by name.
func WithStrategy(name string) Option {
	return func(opts *Options) {
		opts.Strategy = name
	}
}

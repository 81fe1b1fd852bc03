package resultsync

import (
	"context"

	"github.com/agentstation/resultsync/internal/builds"
	"github.com/agentstation/resultsync/pkg/sync"
)

// Sync runs Publish, Absorb and Backfill in that order and reports whether
// the resulting store is acceptable.
//
// Publish and Absorb failures never stop the cycle; they are reported in
// the result. An error is returned only when the expected builds cannot be
// enumerated or the store cannot be read or written. A nil enumerator skips
// Backfill.
func (c *Client) Sync(ctx context.Context, enum builds.Enumerator, opts ...sync.Option) (*sync.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	options, err := c.syncOptions(opts...)
	if err != nil {
		return nil, err
	}

	result := &sync.Result{}

	// Phase A
	if options.SkipPublish || !c.PublishEnabled() {
		result.PublishSkipped = true
		c.log.Debug().Msg("Publish skipped")
	} else {
		result.Published = c.publish(ctx, options.PublishTimeout)
	}

	// Phase B
	if !options.SkipAbsorb && (c.cfg.UseRemoteResults || options.ForceAbsorb) {
		rec, err := c.reconcilerFor(options.Strategy)
		if err != nil {
			return result, err
		}
		policy, err := sync.ParseConflictPolicy(string(options.Conflict))
		if err != nil {
			return result, err
		}
		result.Absorb = c.absorb(ctx, policy, rec)
	}

	// Phase C
	if !options.SkipBackfill && enum != nil {
		list, err := enum.Builds(ctx)
		if err != nil {
			c.log.Error().Err(err).Msg("Cannot enumerate expected builds")
			return result, err
		}
		if result.Backfill, err = c.Backfill(list); err != nil {
			return result, err
		}
	}

	result.Acceptable, err = c.Acceptable()
	if err != nil {
		return result, err
	}

	c.log.Info().Bool("acceptable", result.Acceptable).Str("summary", result.Summary()).Msg("Sync completed")
	return result, nil
}

package resultsync

import (
	"github.com/agentstation/resultsync/internal/builds"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/sync"
)

// Backfill inserts a NO TEST entry for every expected build whose platform
// token is not contained in any platform key already stored, then persists
// the store. The new entries go under the bare platform token.
//
// Membership is checked against the keys present before backfill starts,
// so every expected build of a missing platform is inserted.
func (c *Client) Backfill(list []builds.Build) (*sync.BackfillReport, error) {
	log := c.phaseLogger("backfill")
	report := &sync.BackfillReport{Expected: len(list)}

	err := c.store.Update(func(set results.Set) error {
		report.Added = backfill(set, list)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Backfill aborted")
		return nil, err
	}

	for _, e := range report.Added {
		log.Debug().Str("platform", e.Platform).Str("build", e.Build).Msg("Backfilled missing build")
		c.hooks.triggerBackfilled(e.Platform, e.Build)
	}
	log.Info().Str("summary", report.Summary()).Msg("Backfill finished")
	return report, nil
}

// backfill mutates set and returns the inserted entries in list order.
func backfill(set results.Set, list []builds.Build) []results.Entry {
	known := make(results.Set, len(set))
	for platform := range set {
		known[platform] = nil
	}

	var added []results.Entry
	for _, b := range list {
		if known.HasPlatformToken(b.Platform) {
			continue
		}
		if _, ok := set.Get(b.Platform, b.Build); ok {
			continue
		}
		set.Put(b.Platform, b.Build, results.NoTest)
		added = append(added, results.Entry{Platform: b.Platform, Build: b.Build, Outcome: results.NoTest})
	}
	return added
}

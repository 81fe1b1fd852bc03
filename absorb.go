package resultsync

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"

	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
	"github.com/agentstation/resultsync/pkg/reconcile"
	"github.com/agentstation/resultsync/pkg/results"
	"github.com/agentstation/resultsync/pkg/store"
	"github.com/agentstation/resultsync/pkg/sync"
)

// Absorb merges every archive in the remote drop directory into the local
// tree and store. It returns nil when use_remote_results is off.
//
// Archives are processed one at a time in name order. A failing archive is
// recorded in the report and the next one is processed.
func (c *Client) Absorb(ctx context.Context) *sync.AbsorbReport {
	if !c.cfg.UseRemoteResults {
		c.log.Debug().Str("phase", "absorb").Msg("Remote results disabled, skipping absorb")
		return nil
	}
	return c.absorb(ctx, sync.ConflictPolicy(c.cfg.AbsorbConflict), c.reconciler)
}

// Archives lists the archives waiting in the remote drop directory, sorted.
func (c *Client) Archives() ([]string, error) {
	entries, err := c.options.fs.ReadDir(c.cfg.RemoteDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", c.cfg.RemoteDir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), constants.ArchiveExt) {
			continue
		}
		out = append(out, filepath.Join(c.cfg.RemoteDir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (c *Client) absorb(ctx context.Context, policy sync.ConflictPolicy, rec reconcile.Reconciler) *sync.AbsorbReport {
	log := c.phaseLogger("absorb")
	report := sync.NewAbsorbReport()

	archives, err := c.Archives()
	if err != nil {
		log.Error().Err(err).Msg("Cannot list remote archives")
		report.Failed[c.cfg.RemoteDir] = err
		return report
	}
	if len(archives) == 0 {
		log.Info().Str("dir", c.cfg.RemoteDir).Msg("No remote archives to absorb")
		return report
	}

	// A corrupt store aborts the phase before any archive is unpacked.
	if _, err := c.store.Load(); err != nil {
		log.Error().Err(err).Str("store", c.store.Path()).Msg("Cannot load result store, skipping absorb")
		report.Failed[c.store.Path()] = err
		return report
	}

	for _, path := range archives {
		if err := ctx.Err(); err != nil {
			report.Failed[filepath.Base(path)] = err
			continue
		}

		name := filepath.Base(path)
		alog := log.With().Str("archive", name).Logger()
		if err := c.absorbOne(path, policy, rec, report, alog); err != nil {
			alog.Error().Err(err).Msg("Failed to absorb archive, continuing")
			report.Failed[name] = err
			continue
		}
		report.Processed = append(report.Processed, name)
	}

	log.Info().Str("summary", report.Summary()).Msg("Absorb finished")
	return report
}

// absorbOne unpacks one archive into the scratch directory, validates its
// result payload, moves logs/ and results/ into the local tree and merges
// the payload. The scratch directory is removed on every path.
func (c *Client) absorbOne(path string, policy sync.ConflictPolicy, rec reconcile.Reconciler, report *sync.AbsorbReport, log zerolog.Logger) error {
	fs := c.options.fs
	scratch := c.cfg.TempDir

	if err := util.RemoveAll(fs, scratch); err != nil {
		return errors.WrapIO("delete", scratch, err)
	}
	defer func() {
		if err := util.RemoveAll(fs, scratch); err != nil {
			log.Warn().Err(err).Str("dir", scratch).Msg("Failed to remove scratch directory")
		}
	}()

	if err := c.options.codec.Unpack(path, scratch); err != nil {
		return err
	}

	payloadPath := filepath.Join(scratch, constants.ResultsFileName)
	data, err := util.ReadFile(fs, payloadPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("results file", filepath.Base(path)+":"+constants.ResultsFileName)
		}
		return errors.WrapIO("read", payloadPath, err)
	}
	incoming, err := store.Decode(filepath.Base(path)+":"+constants.ResultsFileName, data)
	if err != nil {
		return err
	}

	for _, dir := range []string{constants.LogsDirName, constants.ResultsDirName} {
		if err := c.moveTree(filepath.Join(scratch, dir), filepath.Join(c.cfg.LocalDir, dir), policy, report, log); err != nil {
			return err
		}
	}

	var merged *reconcile.Result
	err = c.store.Update(func(set results.Set) error {
		merged = rec.Merge(set, incoming, reconcile.SourceName(filepath.Base(path)))
		return nil
	})
	if err != nil {
		return err
	}

	report.Changes = append(report.Changes, merged.Changes...)
	c.hooks.triggerChanges(merged.Changes)
	for _, ch := range merged.Changes {
		log.Debug().Str("platform", ch.Platform).Str("build", ch.Build).
			Stringer("from", ch.From).Stringer("to", ch.To).Msg("Outcome changed")
	}
	log.Info().Str("merge", merged.Summary()).Msg("Archive absorbed")
	return nil
}

// moveTree relocates every file under src to the same relative path under
// dst. A missing src is not an error.
func (c *Client) moveTree(src, dst string, policy sync.ConflictPolicy, report *sync.AbsorbReport, log zerolog.Logger) error {
	fs := c.options.fs

	var files []string
	err := util.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("read", src, err)
	}

	for _, path := range files {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.WrapIO("move", path, err)
		}
		target := filepath.Join(dst, rel)

		if _, err := fs.Stat(target); err == nil {
			if policy == sync.ConflictKeep {
				log.Warn().Str("file", target).Msg("Local file exists, keeping it and discarding incoming copy")
				report.FilesKept++
				continue
			}
			log.Warn().Str("file", target).Msg("Overwriting local file with incoming copy")
			report.FilesOverwritten++
			if err := fs.Remove(target); err != nil {
				return errors.WrapIO("delete", target, err)
			}
		}

		if err := fs.MkdirAll(filepath.Dir(target), constants.DirPermissions); err != nil {
			return errors.WrapIO("create", filepath.Dir(target), err)
		}
		if err := fs.Rename(path, target); err != nil {
			return errors.WrapIO("move", path, err)
		}
		report.FilesMoved++
	}
	return nil
}

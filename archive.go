package resultsync

import (
	"context"
	"path/filepath"

	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
)

// Archive snapshots the local result directory into
// results_YYYYMMDD_HHMMSS.zip under the archive directory and returns its
// path. The archive is write-only retention; nothing reads it back.
func (c *Client) Archive(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := c.options.fs.MkdirAll(c.cfg.ArchiveDir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", c.cfg.ArchiveDir, err)
	}

	name := constants.ArchivePrefix + c.options.clock().Format(constants.ArchiveTimeLayout) + constants.ArchiveExt
	path := filepath.Join(c.cfg.ArchiveDir, name)
	if _, err := c.options.fs.Stat(path); err == nil {
		return "", errors.WrapArchive("pack", path, errors.New("archive already exists"))
	}

	if err := c.options.codec.Pack(c.cfg.LocalDir, c.cfg.LocalDir, path); err != nil {
		return "", err
	}

	c.log.Info().Str("phase", "archive").Str("path", path).Msg("Results archived")
	return path, nil
}

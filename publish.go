package resultsync

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/resultsync/pkg/constants"
)

// Publish packs the local result directory and sends it to the configured
// remote host. It returns true when publishing is not configured or the
// archive was delivered, false otherwise. Failures are logged, never
// returned. The local archive is removed on every path.
func (c *Client) Publish(ctx context.Context) bool {
	return c.publish(ctx, c.cfg.PublishTimeout)
}

// PublishEnabled reports whether send_to_remote is configured.
func (c *Client) PublishEnabled() bool {
	return c.cfg.SendToRemote != nil
}

// publishArchivePath is where the outgoing archive is built: next to the
// local directory, never inside it.
func (c *Client) publishArchivePath() string {
	return filepath.Join(filepath.Dir(c.cfg.LocalDir), c.cfg.SendToRemote.Archive+constants.ArchiveExt)
}

func (c *Client) publish(ctx context.Context, timeout time.Duration) bool {
	log := c.phaseLogger("publish")
	if !c.PublishEnabled() {
		log.Debug().Msg("Remote delivery not configured, skipping publish")
		return true
	}
	if c.options.sender == nil {
		log.Error().Msg("Remote delivery configured without a sender")
		return false
	}

	remote := c.cfg.SendToRemote
	archivePath := c.publishArchivePath()
	name := filepath.Base(archivePath)
	log = log.With().Str("archive", name).Str("host", remote.Host).Logger()

	defer func() {
		if err := c.options.fs.Remove(archivePath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", archivePath).Msg("Failed to remove local archive")
		}
	}()

	if err := c.options.codec.Pack(c.cfg.LocalDir, c.cfg.LocalDir, archivePath); err != nil {
		log.Error().Err(err).Msg("Impossible to send results to remote server")
		return false
	}

	f, err := c.options.fs.Open(archivePath)
	if err != nil {
		log.Error().Err(err).Msg("Impossible to send results to remote server")
		return false
	}
	defer f.Close()

	if timeout <= 0 {
		timeout = constants.PublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := c.options.sender.Send(ctx, name, f, remote.RemoteDir); err != nil {
		log.Error().Err(err).Dur("timeout", timeout).Msg("Impossible to send results to remote server")
		return false
	}

	log.Info().
		Str("remote_dir", remote.RemoteDir).
		Dur("elapsed", time.Since(start)).
		Msg("Results sent to remote server")
	return true
}

// Package cycle provides the commands that run the sync phases: sync,
// publish, absorb, backfill and archive.
package cycle

import (
	"github.com/agentstation/resultsync/pkg/errors"
)

// checkAcceptable turns an unacceptable verdict into an error so the CLI
// exits non-zero. noCheck disables the check.
func checkAcceptable(acceptable, noCheck bool) error {
	if acceptable || noCheck {
		return nil
	}
	return errors.ErrNotAcceptable
}

package cycle

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/application"
	"github.com/agentstation/resultsync/internal/builds"
	"github.com/agentstation/resultsync/internal/cmd/output"
	"github.com/agentstation/resultsync/pkg/sync"
)

// SyncFlags holds the flags of the sync command.
type SyncFlags struct {
	SkipPublish    bool
	SkipAbsorb     bool
	SkipBackfill   bool
	ForceAbsorb    bool
	PublishTimeout time.Duration
	Conflict       string
	Strategy       string
	NoCheck        bool
}

// Options converts the flags that were set into sync options.
func (f *SyncFlags) Options(cmd *cobra.Command) []sync.Option {
	opts := []sync.Option{
		sync.WithSkipPublish(f.SkipPublish),
		sync.WithSkipAbsorb(f.SkipAbsorb),
		sync.WithSkipBackfill(f.SkipBackfill),
		sync.WithForceAbsorb(f.ForceAbsorb),
	}
	if cmd.Flags().Changed("publish-timeout") {
		opts = append(opts, sync.WithPublishTimeout(f.PublishTimeout))
	}
	if cmd.Flags().Changed("conflict") {
		opts = append(opts, sync.WithConflictPolicy(sync.ConflictPolicy(f.Conflict)))
	}
	if cmd.Flags().Changed("strategy") {
		opts = append(opts, sync.WithStrategy(f.Strategy))
	}
	return opts
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(app application.Application) *cobra.Command {
	flags := &SyncFlags{}

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Publish, absorb and backfill results in one cycle",
		Args:    cobra.NoArgs,
		Long: `Sync runs the three phases of a result cycle in order:

1. Publish - pack the local result directory and send it to send_to_remote
2. Absorb  - merge every archive in remote_dir (when use_remote_results is set)
3. Backfill - record NO TEST for expected builds whose platform never reported

Publish and absorb failures are reported and the cycle continues. The
command exits non-zero when the final results contain TIMEOUT, ERROR or
FAIL, unless --no-check is given.`,
		Example: `  resultsync sync                     # Full cycle
  resultsync sync --skip-publish      # Only absorb and backfill
  resultsync sync --conflict keep     # Never overwrite local logs
  resultsync sync -o json --no-check  # Machine-readable report`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			var enum builds.Enumerator
			if !flags.SkipBackfill {
				if enum, err = client.Enumerator(); err != nil {
					return err
				}
			}

			res, err := client.Sync(cmd.Context(), enum, flags.Options(cmd)...)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			if err := output.FormatSyncResult(cmd.OutOrStdout(), res, format); err != nil {
				return err
			}
			return checkAcceptable(res.Acceptable, flags.NoCheck)
		},
	}

	cmd.Flags().BoolVar(&flags.SkipPublish, "skip-publish", false, "do not send local results")
	cmd.Flags().BoolVar(&flags.SkipAbsorb, "skip-absorb", false, "do not merge remote archives")
	cmd.Flags().BoolVar(&flags.SkipBackfill, "skip-backfill", false, "do not record missing builds")
	cmd.Flags().BoolVar(&flags.ForceAbsorb, "force-absorb", false, "absorb even when use_remote_results is off")
	cmd.Flags().DurationVar(&flags.PublishTimeout, "publish-timeout", 0, "upper bound for the transfer (default from config)")
	cmd.Flags().StringVar(&flags.Conflict, "conflict", "", "same-name file policy during absorb: overwrite, keep")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", "", "merge strategy: priority, incoming")
	cmd.Flags().BoolVar(&flags.NoCheck, "no-check", false, "exit zero even when results are not acceptable")

	return cmd
}

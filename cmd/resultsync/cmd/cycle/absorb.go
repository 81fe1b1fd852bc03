package cycle

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/application"
	"github.com/agentstation/resultsync/internal/cmd/output"
	"github.com/agentstation/resultsync/pkg/sync"
)

// NewAbsorbCommand creates the absorb command.
func NewAbsorbCommand(app application.Application) *cobra.Command {
	var (
		force    bool
		conflict string
		strategy string
	)

	cmd := &cobra.Command{
		Use:     "absorb",
		GroupID: "core",
		Short:   "Merge archives dropped by other machines",
		Args:    cobra.NoArgs,
		Long: `Absorb unpacks every archive in remote_dir, moves its logs and result
files into the local directory and merges its results into the store.

A failing archive is reported and the remaining archives are processed.
The command exits non-zero when any archive failed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			opts := []sync.Option{
				sync.WithSkipPublish(true),
				sync.WithSkipBackfill(true),
				sync.WithForceAbsorb(force),
			}
			if conflict != "" {
				opts = append(opts, sync.WithConflictPolicy(sync.ConflictPolicy(conflict)))
			}
			if strategy != "" {
				opts = append(opts, sync.WithStrategy(strategy))
			}

			res, err := client.Sync(cmd.Context(), nil, opts...)
			if err != nil {
				return err
			}
			if res.Absorb == nil {
				cmd.Println("use_remote_results is off; pass --force to absorb anyway")
				return nil
			}

			format := output.DetectFormat(app.OutputFormat())
			if err := output.FormatChanges(cmd.OutOrStdout(), res.Absorb.Changes, format); err != nil {
				return err
			}
			app.Logger().Info().Msg(res.Absorb.Summary())
			return res.Absorb.Err()
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "absorb even when use_remote_results is off")
	cmd.Flags().StringVar(&conflict, "conflict", "", "same-name file policy: overwrite, keep")
	cmd.Flags().StringVar(&strategy, "strategy", "", "merge strategy: priority, incoming")

	return cmd
}

// Package merge provides the merge command.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync"
	"github.com/agentstation/resultsync/cmd/application"
	"github.com/agentstation/resultsync/internal/cmd/output"
	"github.com/agentstation/resultsync/pkg/reconcile"
)

// NewCommand creates the merge command.
func NewCommand(app application.Application) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:     "merge FILE...",
		GroupID: "results",
		Short:   "Merge result files into the store",
		Args:    cobra.MinimumNArgs(1),
		Long: `Merge reads each results file (the same JSON layout as the store) and
folds it into the store in argument order, then prints the outcome changes.

With the default priority strategy an incoming outcome replaces the stored
one when it ranks at least as high. Nothing is written when any file is
missing or malformed.`,
		Example: `  resultsync merge node-2/results.json node-3/results.json
  resultsync merge --strategy incoming rerun.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []resultsync.Option
			if strategy != "" {
				s, err := reconcile.StrategyByName(strategy)
				if err != nil {
					return err
				}
				opts = append(opts, resultsync.WithMergeStrategy(s))
			}

			client, err := app.Client(opts...)
			if err != nil {
				return err
			}
			res, err := client.MergeFiles(args...)
			if err != nil {
				return err
			}

			app.Logger().Info().Str("strategy", res.Strategy).Msg(res.Summary())
			format := output.DetectFormat(app.OutputFormat())
			return output.FormatChanges(cmd.OutOrStdout(), res.Changes, format)
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "merge strategy: priority, incoming")
	return cmd
}

package cycle

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/application"
	"github.com/agentstation/resultsync/internal/cmd/output"
)

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "backfill",
		GroupID: "core",
		Short:   "Record NO TEST for expected builds that never reported",
		Args:    cobra.NoArgs,
		Long: `Backfill enumerates the expected builds (the builds list of the config
file, or the versions document at commands_url) and inserts NO TEST for
every build whose platform does not appear in the store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			enum, err := client.Enumerator()
			if err != nil {
				return err
			}
			list, err := enum.Builds(cmd.Context())
			if err != nil {
				return err
			}

			report, err := client.Backfill(list)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.FormatEntries(cmd.OutOrStdout(), report.Added, format)
		},
	}
}

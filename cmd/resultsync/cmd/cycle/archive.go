package cycle

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/application"
)

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "archive",
		GroupID: "core",
		Short:   "Snapshot the local result directory into archive_dir",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			path, err := client.Archive(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

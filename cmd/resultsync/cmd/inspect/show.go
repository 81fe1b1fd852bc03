// Package inspect provides read-only commands over the result store.
package inspect

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/application"
	"github.com/agentstation/resultsync/internal/cmd/output"
)

// NewShowCommand creates the show command.
func NewShowCommand(app application.Application) *cobra.Command {
	var failures bool

	cmd := &cobra.Command{
		Use:     "show",
		GroupID: "results",
		Short:   "Print the stored results",
		Args:    cobra.NoArgs,
		Example: `  resultsync show               # Table of every outcome
  resultsync show --failures    # Only TIMEOUT, ERROR and FAIL
  resultsync show -o json       # Same layout as the results file`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			set, err := client.Results()
			if err != nil {
				return err
			}
			format := output.DetectFormat(app.OutputFormat())
			return output.FormatSet(cmd.OutOrStdout(), set, failures, format)
		},
	}

	cmd.Flags().BoolVar(&failures, "failures", false, "only show outcomes that are not acceptable")
	return cmd
}

package inspect

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/application"
	"github.com/agentstation/resultsync/internal/cmd/output"
	"github.com/agentstation/resultsync/pkg/errors"
)

// NewCheckCommand creates the check command. It exits non-zero when the
// store holds any TIMEOUT, ERROR or FAIL outcome.
func NewCheckCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		GroupID: "results",
		Short:   "Summarize outcomes and fail when results are not acceptable",
		Args:    cobra.NoArgs,
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
			if err := output.FormatCounts(cmd.OutOrStdout(), set, format); err != nil {
				return err
			}
			if !set.Acceptable() {
				for _, e := range set.Failures() {
					app.Logger().Warn().
						Str("platform", e.Platform).
						Str("build", e.Build).
						Stringer("outcome", e.Outcome).
						Msg("Unacceptable outcome")
				}
				return errors.ErrNotAcceptable
			}
			return nil
		},
	}
}

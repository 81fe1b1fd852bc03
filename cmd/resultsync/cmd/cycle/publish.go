package cycle

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/application"
	"github.com/agentstation/resultsync/pkg/errors"
)

// NewPublishCommand creates the publish command.
func NewPublishCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "publish",
		GroupID: "core",
		Short:   "Send local results to the remote host",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if !client.PublishEnabled() {
				return errors.NewConfigError("send_to_remote", "remote delivery is not configured", nil)
			}
			if !client.Publish(cmd.Context()) {
				return errors.WrapTransport(client.Config().SendToRemote.Host, client.Config().SendToRemote.RemoteDir, false,
					errors.New("results were not delivered, see log"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Results sent to", client.Config().SendToRemote.Host)
			return nil
		},
	}
}

package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/resultsync/cmd/resultsync/cmd/cycle"
	"github.com/agentstation/resultsync/cmd/resultsync/cmd/inspect"
	"github.com/agentstation/resultsync/cmd/resultsync/cmd/merge"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(cycle.NewSyncCommand(a))
	rootCmd.AddCommand(cycle.NewPublishCommand(a))
	rootCmd.AddCommand(cycle.NewAbsorbCommand(a))
	rootCmd.AddCommand(cycle.NewBackfillCommand(a))
	rootCmd.AddCommand(cycle.NewArchiveCommand(a))

	// Result commands
	rootCmd.AddCommand(inspect.NewShowCommand(a))
	rootCmd.AddCommand(inspect.NewCheckCommand(a))
	rootCmd.AddCommand(merge.NewCommand(a))

	rootCmd.AddCommand(a.newVersionCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("resultsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

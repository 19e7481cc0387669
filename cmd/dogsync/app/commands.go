package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/dogsync/cmd/dogsync/cmd/breeds"
	"github.com/agentstation/dogsync/cmd/dogsync/cmd/plan"
	"github.com/agentstation/dogsync/cmd/dogsync/cmd/sync"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(sync.NewCommand(a))
	rootCmd.AddCommand(plan.NewCommand(a))
	rootCmd.AddCommand(breeds.NewCommand(a))
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version subcommand.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dogsync %s\n", a.version)
			fmt.Fprintf(out, "  commit:   %s\n", a.commit)
			fmt.Fprintf(out, "  built:    %s\n", a.date)
			fmt.Fprintf(out, "  built by: %s\n", a.builtBy)
			return nil
		},
	}
}

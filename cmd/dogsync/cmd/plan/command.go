// Package plan provides the plan command.
package plan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dogsync/internal/cmd/alerts"
	"github.com/agentstation/dogsync/internal/cmd/application"
	"github.com/agentstation/dogsync/internal/cmd/cmdutil"
	"github.com/agentstation/dogsync/internal/cmd/output"
)

// NewCommand creates the plan command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plan",
		GroupID: "core",
		Short:   "Show the actions a sync would take",
		Long: `Plan reads the breed catalog and the remote state and prints the
reconciled actions, deletes first, without changing anything or writing
a report.`,
		Example: `  dogsync plan
  dogsync plan --clean -o json
  dogsync plan --dummy --breed akita`,
		Args: cobra.NoArgs,
	}

	flags := cmdutil.AddRunFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.RunConfig()
		if err != nil {
			return err
		}
		cfg = flags.Apply(cmd, cfg)

		syncer, err := app.Syncer(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = syncer.Close() }()

		preview, err := syncer.Plan(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		format := output.DetectFormat(app.OutputFormat())
		if format != output.FormatTable {
			return output.NewFormatter(format).Format(w, preview.Plan)
		}

		if preview.Plan.Len() == 0 {
			fmt.Fprintln(w, "Nothing to do.")
		} else if err := output.NewFormatter(format).Format(w, output.PlanTable(preview.Plan)); err != nil {
			return err
		}
		notices := alerts.NewWriter(cmd.ErrOrStderr(),
			!app.NoColor() && output.IsTerminal(os.Stderr), app.Quiet())
		for _, f := range preview.Catalog.Failures {
			a := alerts.New(alerts.LevelWarning, "listing %s failed", f.Prefix).
				WithError(f.Err).
				WithDetails("excluded from cleaning")
			if err := notices.Write(a); err != nil {
				return err
			}
		}
		return nil
	}

	return cmd
}

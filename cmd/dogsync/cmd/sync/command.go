// Package sync provides the sync command.
package sync

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dogsync"
	"github.com/agentstation/dogsync/internal/cmd/alerts"
	"github.com/agentstation/dogsync/internal/cmd/application"
	"github.com/agentstation/dogsync/internal/cmd/cmdutil"
	"github.com/agentstation/dogsync/internal/cmd/output"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/report"
)

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		noProgress bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Sync breed images to Yandex.Disk",
		Long: `Sync plans the images to keep for every breed and sub-breed, reads
what is stored under the root directory and applies the difference.

Existing images are skipped unless --overwrite is set. Images that are not
part of the plan are deleted only with --clean, to the recycle bin unless
--recycle=false. Failed actions are listed in the report and do not fail
the command. An unreachable store or breed list fails it, and so do an
interrupted run and a report that cannot be written.`,
		Example: `  dogsync sync
  dogsync sync --dummy --report result.yaml
  dogsync sync --breed akita,hound --max-sub-breed-images 2
  dogsync sync --clean --overwrite --recycle=false`,
		Args: cobra.NoArgs,
	}

	flags := cmdutil.AddRunFlags(cmd)
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan and write the report without touching the store")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.RunConfig()
		if err != nil {
			return err
		}
		cfg = flags.Apply(cmd, cfg)

		opts := []dogsync.Option{dogsync.WithDryRun(dryRun)}
		var bar *progress
		if !noProgress && !app.Quiet() && output.IsTerminal(os.Stderr) {
			bar = newProgress(os.Stderr)
			opts = append(opts, dogsync.WithHooks(bar.Hooks()))
		}

		syncer, err := app.Syncer(cfg, opts...)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := syncer.Close(); cerr != nil {
				app.Logger().Warn().Err(cerr).Msg("Failed to close store")
			}
		}()

		r, runErr := syncer.Run(cmd.Context())
		if bar != nil {
			bar.Stop()
		}
		if r == nil {
			return runErr
		}

		if err := printReport(cmd, app.OutputFormat(), r); err != nil {
			return err
		}
		notices := alerts.NewWriter(cmd.ErrOrStderr(),
			!app.NoColor() && output.IsTerminal(os.Stderr), app.Quiet())
		if err := notices.Write(status(r, cfg.ReportPath, runErr)); err != nil {
			return err
		}
		return runErr
	}

	return cmd
}

// printReport writes the report in the requested format. The table form
// prints the summary and any failures.
func printReport(cmd *cobra.Command, format string, r *report.Report) error {
	w := cmd.OutOrStdout()
	f := output.DetectFormat(format)
	if f != output.FormatTable {
		return output.NewFormatter(f).Format(w, r)
	}

	table := output.NewFormatter(output.FormatTable)
	if err := table.Format(w, output.SummaryTable(r)); err != nil {
		return err
	}
	if r.HasFailures() {
		return table.Format(w, output.FailuresTable(r))
	}
	return nil
}

// status summarizes how the run ended.
func status(r *report.Report, path string, runErr error) *alerts.Alert {
	switch {
	case errors.Is(runErr, errors.ErrReportPersistFailed):
		return alerts.New(alerts.LevelError, "report not written to %s", path).WithError(runErr)
	case r.Aborted:
		return alerts.New(alerts.LevelError, "sync aborted; partial report written to %s", path)
	case r.HasFailures():
		return alerts.New(alerts.LevelWarning, "sync finished with %d failed actions; report written to %s",
			r.Summary.Failed, path)
	case r.DryRun:
		return alerts.New(alerts.LevelInfo, "dry run; report written to %s", path)
	default:
		return alerts.New(alerts.LevelSuccess, "sync complete; report written to %s", path)
	}
}

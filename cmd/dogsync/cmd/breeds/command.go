// Package breeds provides the breeds command.
package breeds

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/dogsync/internal/cmd/application"
	"github.com/agentstation/dogsync/internal/cmd/output"
)

// NewCommand creates the breeds command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:     "breeds",
		GroupID: "core",
		Short:   "List breeds and sub-breeds",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.RunConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("breed") {
				cfg.Breeds = only
			}
			// Listing breeds never touches the store.
			cfg.Dummy = true
			cfg.DummyState = ""

			syncer, err := app.Syncer(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = syncer.Close() }()

			tax, err := syncer.Breeds(cmd.Context())
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			if format == output.FormatTable {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.BreedsTable(tax))
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), tax)
		},
	}

	cmd.Flags().StringSliceVarP(&only, "breed", "b", nil, "Only these breeds")

	return cmd
}

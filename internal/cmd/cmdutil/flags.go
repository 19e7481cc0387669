// Package cmdutil provides shared flags and configuration utilities for dogsync commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/dogsync/internal/config"
)

// RunFlags override the run configuration for a single invocation.
// Only flags explicitly set on the command line take effect.
type RunFlags struct {
	Clean             bool
	Overwrite         bool
	Recycle           bool
	MaxBreedImages    int
	MaxSubBreedImages int
	Root              string
	Report            string
	Dummy             bool
	Concurrency       int
	Breeds            []string
}

// AddRunFlags adds the configuration override flags to cmd.
func AddRunFlags(cmd *cobra.Command) *RunFlags {
	flags := &RunFlags{}

	cmd.Flags().BoolVar(&flags.Clean, "clean", false,
		"Delete remote images that are not in the plan (CLEAN)")
	cmd.Flags().BoolVar(&flags.Overwrite, "overwrite", false,
		"Replace images that already exist remotely (OVERWRITE)")
	cmd.Flags().BoolVar(&flags.Recycle, "recycle", true,
		"Move deleted images to the recycle bin (USE_RECYCLE_BIN)")
	cmd.Flags().IntVar(&flags.MaxBreedImages, "max-breed-images", 0,
		"Images per breed without sub-breeds (MAX_BREED_IMAGES)")
	cmd.Flags().IntVar(&flags.MaxSubBreedImages, "max-sub-breed-images", 0,
		"Images per sub-breed (MAX_SUB_BREED_IMAGES)")
	cmd.Flags().StringVar(&flags.Root, "root", "",
		"Remote root directory (YD_ROOT_DIR)")
	cmd.Flags().StringVar(&flags.Report, "report", "",
		"Report file, .json or .yaml (REPORT_PATH)")
	cmd.Flags().BoolVar(&flags.Dummy, "dummy", false,
		"Use the offline dummy store (YD_TEST_DUMMY)")
	cmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "c", 0,
		"Concurrent actions (CONCURRENCY)")
	cmd.Flags().StringSliceVarP(&flags.Breeds, "breed", "b", nil,
		"Restrict to these breeds (BREEDS)")

	return flags
}

// Apply returns cfg with every changed flag applied.
func (f *RunFlags) Apply(cmd *cobra.Command, cfg config.Config) config.Config {
	changed := cmd.Flags().Changed
	if changed("clean") {
		cfg.Clean = f.Clean
	}
	if changed("overwrite") {
		cfg.Overwrite = f.Overwrite
	}
	if changed("recycle") {
		cfg.UseRecycleBin = f.Recycle
	}
	if changed("max-breed-images") {
		cfg.MaxBreedImages = f.MaxBreedImages
	}
	if changed("max-sub-breed-images") {
		cfg.MaxSubBreedImages = f.MaxSubBreedImages
	}
	if changed("root") {
		cfg.RootDir = f.Root
	}
	if changed("report") {
		cfg.ReportPath = f.Report
	}
	if changed("dummy") {
		cfg.Dummy = f.Dummy
	}
	if changed("concurrency") {
		cfg.Concurrency = f.Concurrency
	}
	if changed("breed") {
		cfg.Breeds = f.Breeds
	}
	return cfg
}

package main

import (
	"context"

	"github.com/spf13/cobra"
	"vexrank/internal/pipeline"
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest matches into an archive without rating them",
	Long: `Harvest every selected season from the RobotEvents API and save the match
archive, without running the rating engine.

The archive keeps seasons oldest first with matches in chronological order,
so 'vexrank rate' can recompute ratings offline, for example after tuning
the rating parameters in the configuration file.`,
	Example: `  # Archive every VRC season
  vexrank harvest

  # Archive one season with the live dashboard
  vexrank harvest --seasons 190 --tui

  # Recompute ratings later without touching the API
  vexrank rate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runHarvest(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd)
	addHarvestFlags(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) {
	runPipeline(func(ctx context.Context, runner *pipeline.Runner) (*pipeline.Result, error) {
		return runner.Harvest(ctx)
	})
}

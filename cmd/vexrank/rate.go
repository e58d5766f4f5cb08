package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"vexrank/internal/pipeline"
	"vexrank/pkg/config"
	"vexrank/pkg/logger"
	"vexrank/pkg/ui"
)

// rateCmd represents the rate command
var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Recompute ratings from a saved harvest archive",
	Long: `Replay the harvest archive written by 'vexrank harvest' (or a previous
run) through a fresh rating engine and rewrite the leaderboard, histories
and run summary.

No API requests are made, so this is the fast way to experiment with
different rating parameters: edit the rating section of the configuration
file and rate again.`,
	Example: `  # Recompute ratings from ./ratings/matches.json
  vexrank rate

  # Recompute from an archive in a custom directory
  vexrank rate --output ./archive-2024`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runRate(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
	rateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory holding the archive and receiving artifacts (default: ./ratings)")
}

func runRate(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if !notifications {
		flags["notifications"] = false
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("vexrank starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rating replays the saved archive, so no API client is wired.
	runner, err := pipeline.New(nil, cfg)
	if err != nil {
		ui.PrintError("Failed to initialize pipeline", err.Error())
		os.Exit(1)
	}

	if _, err := runner.Rate(ctx); err != nil {
		logger.WithError(err).Error("Rating failed")
		os.Exit(1)
	}

	logger.Info("Rating completed successfully")
}

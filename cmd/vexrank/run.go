package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"vexrank/internal/pipeline"
	"vexrank/pkg/auth"
	"vexrank/pkg/cache"
	"vexrank/pkg/config"
	"vexrank/pkg/logger"
	"vexrank/pkg/metrics"
	"vexrank/pkg/robotevents"
	"vexrank/pkg/ui"
	"vexrank/pkg/ui/tui"
)

var (
	// Harvest flags, shared by the run and harvest commands
	seasonIDs       string
	seasonFilter    string
	programID       int
	outputDir       string
	concurrency     int
	requestInterval time.Duration
	maxRetries      int
	accountName     string
	apiToken        string
	scoredOnly      bool
	useTUI          bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Harvest matches and compute team ratings in one pass",
	Long: `Harvest every selected season from the RobotEvents API, feed the matches
through the rating engine in chronological order, and write the leaderboard,
rating histories and run summary.

Seasons are processed oldest first and ratings carry across season
boundaries. By default every season of the program is harvested; narrow the
selection with --seasons or --season-filter.

This command requires a RobotEvents API token, configured through:
  - Stored credentials (use 'vexrank auth login' to store)
  - The VEXRANK_TOKEN environment variable
  - A configuration file`,
	Example: `  # Rate every VRC season with default settings
  vexrank run

  # Rate two specific seasons into a custom directory
  vexrank run --seasons 181,190 --output ./ratings

  # Only seasons whose name contains a string, with the live dashboard
  vexrank run --season-filter "Tipping Point" --tui

  # Use a specific stored token profile and a wider fan-out
  vexrank run --account work --concurrency 8`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runRun(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addHarvestFlags(runCmd)
}

// addHarvestFlags registers the flag set shared by run and harvest.
func addHarvestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&seasonIDs, "seasons", "", "comma separated season IDs (default: every season of the program)")
	cmd.Flags().StringVar(&seasonFilter, "season-filter", "", "only seasons whose name contains this text")
	cmd.Flags().IntVar(&programID, "program", 1, "RobotEvents program ID (1 = VRC)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for artifacts (default: ./ratings)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent branches per traversal level")
	cmd.Flags().DurationVar(&requestInterval, "interval", 1100*time.Millisecond, "minimum spacing between API requests")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "maximum number of retry attempts")
	cmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored token profile")
	cmd.Flags().StringVar(&apiToken, "token", "", "RobotEvents API token (overrides stored credentials)")
	cmd.Flags().BoolVar(&scoredOnly, "scored-only", true, "only fetch matches the API has marked scored")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
}

func runRun(cmd *cobra.Command, args []string) {
	runPipeline(func(ctx context.Context, runner *pipeline.Runner) (*pipeline.Result, error) {
		return runner.Run(ctx)
	})
}

// runPipeline loads configuration, wires the API client and runner, and
// executes invoke under signal cancellation, with the live dashboard attached
// when requested.
func runPipeline(invoke func(context.Context, *pipeline.Runner) (*pipeline.Result, error)) {
	cfg, err := config.Load(configFile, harvestFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("vexrank starting")

	resolveToken(cfg)

	if !useTUI {
		ui.PrintInfo("Program", strconv.Itoa(cfg.API.ProgramID))
		switch {
		case len(cfg.Harvest.Seasons) > 0:
			ui.PrintInfo("Seasons", fmt.Sprint(cfg.Harvest.Seasons))
		case cfg.Harvest.SeasonFilter != "":
			ui.PrintInfo("Season filter", cfg.Harvest.SeasonFilter)
		default:
			ui.PrintInfo("Seasons", "all")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(&cfg.Metrics, logger.GetLogger())
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// The client hooks feed the runner's pacing panel, so the runner
	// variable must exist before the client that calls into it.
	var runner *pipeline.Runner
	opts := []robotevents.Option{
		robotevents.WithRequestHook(func() {
			if runner != nil {
				runner.RequestTaken()
			}
		}),
		robotevents.WithRateLimitHook(func(retryAfter time.Duration) {
			if runner != nil {
				runner.RateLimited(retryAfter)
			}
		}),
	}

	if cfg.Cache.Enabled {
		store, err := cache.New(&cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize response cache")
			ui.PrintWarning("Response cache disabled", err.Error())
		} else {
			opts = append(opts, robotevents.WithCache(store, cfg.Cache.TTL))
		}
	}

	client := robotevents.NewClient(&cfg.API, logger.GetLogger(), opts...)

	runner, err = pipeline.New(client, cfg)
	if err != nil {
		ui.PrintError("Failed to initialize pipeline", err.Error())
		os.Exit(1)
	}

	if useTUI {
		terminal := tui.NewTUI(cfg.Harvest.Concurrency)
		runner.SetDashboard(terminal)

		// Run the pipeline in a goroutine
		workDone := make(chan error)
		go func() {
			_, err := invoke(ctx, runner)
			workDone <- err
		}()

		// Run TUI in main thread
		tuiDone := make(chan error)
		go func() {
			tuiDone <- terminal.Start()
		}()

		// Wait for either to finish
		select {
		case err := <-workDone:
			terminal.Stop()
			<-tuiDone // Wait for TUI to finish
			if err != nil {
				logger.WithError(err).Error("Run failed")
				os.Exit(1)
			}
		case err := <-tuiDone:
			// Dashboard quit cancels the work and waits for it to unwind
			stop()
			workErr := <-workDone
			if err != nil {
				logger.WithError(err).Error("Dashboard failed")
				os.Exit(1)
			}
			if workErr != nil && !errors.Is(workErr, context.Canceled) {
				logger.WithError(workErr).Error("Run failed")
				os.Exit(1)
			}
		}
	} else {
		ui.PrintHighlight("[INITIATING HARVEST SEQUENCE]")

		if _, err := invoke(ctx, runner); err != nil {
			logger.WithError(err).Error("Run failed")
			os.Exit(1)
		}
	}

	logger.Info("Run completed successfully")
}

// harvestFlags builds the config override map from flags changed from their
// defaults.
func harvestFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if seasonIDs != "" {
		flags["seasons"] = seasonIDs
	}
	if seasonFilter != "" {
		flags["season-filter"] = seasonFilter
	}
	if programID != 1 {
		flags["program"] = programID
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrency != 4 {
		flags["concurrency"] = concurrency
	}
	if requestInterval != 1100*time.Millisecond {
		flags["interval"] = requestInterval
	}
	if maxRetries != 3 {
		flags["max-retries"] = maxRetries
	}
	if apiToken != "" {
		flags["token"] = apiToken
	}
	if !scoredOnly {
		flags["scored-only"] = false
	}
	if !notifications {
		flags["notifications"] = false
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}

// resolveToken fills cfg.API.Token from, in order: a named profile, the token
// already merged from flag/env/file, then the default stored profile. Exits
// with guidance when nothing is found.
func resolveToken(cfg *config.Config) {
	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if accountName != "" {
		account, err := credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Token profile not found", accountName)
			ui.PrintInfo("Available profiles", "Use 'vexrank auth list' to see stored profiles")
			os.Exit(1)
		}
		cfg.API.Token = account.Token
		logger.WithField("profile", account.Name).Info("Using stored token")
		ui.PrintInfo("Using token profile", account.Name)
		return
	}

	if cfg.API.Token != "" {
		logger.Info("Using token from configuration")
		return
	}

	account, err := credManager.RetrieveDefault()
	if err != nil {
		logger.Error("No API token found")
		ui.PrintError("No RobotEvents API token found")
		fmt.Println("\nTo store a token securely, run:")
		fmt.Println("  vexrank auth login")
		fmt.Println("\nYou can also set an environment variable:")
		fmt.Println("  export VEXRANK_TOKEN=your_api_token")
		auth.ShowQuickTokenGuide()
		os.Exit(1)
	}

	cfg.API.Token = account.Token
	logger.WithField("profile", account.Name).Info("Using stored token")
	ui.PrintInfo("Using token profile", account.Name)
}

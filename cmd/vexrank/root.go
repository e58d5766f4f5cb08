package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"vexrank/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vexrank",
	Short: "Harvest VEX match results and rate every team with TrueSkill",
	Long: `vexrank walks the RobotEvents API hierarchy (seasons, events, divisions,
matches), feeds every scored 2v2 match through a TrueSkill rating engine in
chronological order, and writes a team leaderboard plus per-team rating
histories.

Features:
  - Secure API token storage using system keychain
  - Global request pacing that respects RobotEvents rate limits
  - Concurrent harvest of events and divisions with bounded fan-out
  - Automatic retry with exponential backoff and Retry-After support
  - Harvest archive for offline re-rating with different parameters
  - Progress tracking with an optional live terminal dashboard

API access requires a free RobotEvents token. Run 'vexrank auth login' to
store one, or export VEXRANK_TOKEN.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
			logLevel = "error"
		} else if logLevel == "error" {
			ui.SetQuietMode(true)
		}

		// The progress line owns the terminal by default. Verbose (or an
		// explicit log level) keeps logs flowing alongside it.
		if !verbose && !quiet && logLevel == "info" {
			logLevel = "error"
		}

		// Don't show logo for certain commands
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.vexrank.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable completion notifications")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show all output (logo, logs, progress)")

	// Version template
	rootCmd.SetVersionTemplate(`vexrank {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

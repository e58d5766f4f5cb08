package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"vexrank/pkg/config"
	"vexrank/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage vexrank configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (VEXRANK_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.vexrank.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like the API token will be masked for security.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = ".vexrank.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# vexrank configuration file
#
# This file contains all available configuration options.
# Every option can also be set with environment variables prefixed with
# VEXRANK_, for example: VEXRANK_TOKEN, VEXRANK_SEASONS, VEXRANK_OUTPUT_DIR.

# RobotEvents API access
api:
  # API base URL
  base_url: "https://www.robotevents.com/api/v2"

  # Bearer token (optional here)
  # Prefer 'vexrank auth login' or VEXRANK_TOKEN over storing it in a file
  token: ""

  # Program to harvest (1 = VRC)
  program_id: 1

  # Minimum spacing between any two API requests, shared by all workers
  request_interval: 1100ms

  # Per-request timeout
  request_timeout: 30s

  # Maximum retry attempts for transient failures
  max_retries: 3

  # Exponential backoff bounds between retries
  retry_base_delay: 2s
  retry_max_delay: 60s

  # Page size for paginated endpoints
  # Range: 1-250
  per_page: 250

# Hierarchy traversal
harvest:
  # Explicit season IDs to harvest
  # Empty means every season of the program, oldest first
  seasons: []

  # Keep only seasons whose name contains this text
  season_filter: ""

  # Concurrent branches per traversal level
  # Range: 1-16
  concurrency: 4

  # Only fetch matches the API has marked scored
  scored_only: true

# Skill model parameters
rating:
  initial_mu: 25.0
  initial_sigma: 8.333333
  beta: 4.166667
  tau: 0.083333
  draw_probability: 0.1

# Output artifacts
output:
  # Directory receiving every artifact
  directory: "./ratings"

  # Leaderboard CSV
  write_csv: true

  # Ratings JSON
  write_json: true

  # Per-team rating history JSON
  write_history: true

  # Harvest archive enabling offline re-rating with 'vexrank rate'
  write_matches: true

# Response cache (off by default)
cache:
  enabled: false

  # Backend: memory or redis
  backend: "memory"

  # How long a cached response stays fresh
  ttl: 15m

  # Redis connection (backend: redis)
  redis_addr: "localhost:6379"
  redis_password: ""
  redis_db: 0

# Prometheus metrics (off by default)
metrics:
  enabled: false
  listen_addr: ":9090"

# Notifications
notifications:
  enabled: true
  on_complete: true
  on_error: true
  on_rate_limit: true
  progress_interval: 10

  # terminal, desktop or none
  notification_type: "terminal"

# Logging
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to the console only
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store your API token with 'vexrank auth login' (or edit the file)")
	fmt.Println("2. Run 'vexrank config validate' to check the configuration")
	fmt.Println("3. Start harvesting with 'vexrank run'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	// Mask the token
	if displayCfg.API.Token != "" {
		if len(displayCfg.API.Token) > 8 {
			displayCfg.API.Token = displayCfg.API.Token[:4] + "..." + displayCfg.API.Token[len(displayCfg.API.Token)-4:]
		} else {
			displayCfg.API.Token = "***"
		}
	}
	if displayCfg.Cache.RedisPassword != "" {
		displayCfg.Cache.RedisPassword = "***"
	}

	// Convert to YAML for display
	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (VEXRANK_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			".vexrank.yaml",
			".vexrank.yml",
			filepath.Join(os.Getenv("HOME"), ".vexrank.yaml"),
			filepath.Join(os.Getenv("HOME"), ".vexrank.yml"),
			filepath.Join(os.Getenv("HOME"), ".config", "vexrank", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "vexrank", "config.yml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	// Perform additional validation checks
	warnings := []string{}
	errors := []string{}

	// Token is usually supplied by the credential stores, so only warn
	if cfg.API.Token == "" && os.Getenv("VEXRANK_TOKEN") == "" {
		warnings = append(warnings, "no API token in config or environment (stored credentials will be used)")
	}

	// Pacing below the public guidance invites 429 responses
	if cfg.API.RequestInterval < time.Second {
		warnings = append(warnings, fmt.Sprintf("request_interval %s is below 1s, expect rate limiting", cfg.API.RequestInterval))
	}
	if cfg.Harvest.Concurrency > 8 {
		warnings = append(warnings, fmt.Sprintf("concurrency %d is aggressive for a paced API", cfg.Harvest.Concurrency))
	}

	// Check paths
	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create output directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.Backend == "redis" && cfg.Cache.RedisAddr == "" {
		errors = append(errors, "cache backend is redis but redis_addr is empty")
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Program ID: %d\n", cfg.API.ProgramID)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Request interval: %s\n", cfg.API.RequestInterval)
	fmt.Printf("  Concurrency: %d\n", cfg.Harvest.Concurrency)
	fmt.Printf("  Max retries: %d\n", cfg.API.MaxRetries)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

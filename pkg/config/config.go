package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the harvester and rating pipeline
type Config struct {
	// RobotEvents API access and pacing
	API APIConfig `yaml:"api" json:"api"`

	// Hierarchy traversal settings
	Harvest HarvestConfig `yaml:"harvest" json:"harvest"`

	// Skill model parameters
	Rating RatingConfig `yaml:"rating" json:"rating"`

	// Output artifact settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Response cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Prometheus metrics settings
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds RobotEvents API configuration
type APIConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Token is the bearer token. Usually left empty here and supplied via
	// the credential stores or VEXRANK_TOKEN instead.
	Token     string `yaml:"token" json:"token"`
	ProgramID int    `yaml:"program_id" json:"program_id"`
	// RequestInterval is the minimum spacing between any two outbound
	// requests, shared across all goroutines.
	RequestInterval time.Duration `yaml:"request_interval" json:"request_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	// MaxRetries counts retries after the first attempt.
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" json:"retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay" json:"retry_max_delay"`
	PerPage        int           `yaml:"per_page" json:"per_page"`
}

// HarvestConfig holds hierarchy traversal configuration
type HarvestConfig struct {
	// Seasons pins explicit season IDs. Empty means every season of the
	// program, oldest first.
	Seasons []int `yaml:"seasons" json:"seasons"`
	// SeasonFilter keeps seasons whose name contains this substring.
	SeasonFilter string `yaml:"season_filter" json:"season_filter"`
	// Concurrency bounds sibling branches in flight at each level.
	Concurrency int  `yaml:"concurrency" json:"concurrency"`
	ScoredOnly  bool `yaml:"scored_only" json:"scored_only"`
}

// RatingConfig holds the skill model parameters
type RatingConfig struct {
	InitialMu       float64 `yaml:"initial_mu" json:"initial_mu"`
	InitialSigma    float64 `yaml:"initial_sigma" json:"initial_sigma"`
	Beta            float64 `yaml:"beta" json:"beta"`
	Tau             float64 `yaml:"tau" json:"tau"`
	DrawProbability float64 `yaml:"draw_probability" json:"draw_probability"`
}

// OutputConfig holds output artifact configuration
type OutputConfig struct {
	Directory    string `yaml:"directory" json:"directory"`
	WriteCSV     bool   `yaml:"write_csv" json:"write_csv"`
	WriteJSON    bool   `yaml:"write_json" json:"write_json"`
	WriteHistory bool   `yaml:"write_history" json:"write_history"`
	// WriteMatches saves the harvested match set so ratings can be
	// recomputed offline with "vexrank rate".
	WriteMatches bool `yaml:"write_matches" json:"write_matches"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Backend selects "memory" or "redis".
	Backend       string        `yaml:"backend" json:"backend"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	OnRateLimit      bool   `yaml:"on_rate_limit" json:"on_rate_limit"`
	ProgressInterval int    `yaml:"progress_interval" json:"progress_interval"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "https://www.robotevents.com/api/v2",
			ProgramID:       1, // VRC
			RequestInterval: 1100 * time.Millisecond,
			RequestTimeout:  30 * time.Second,
			MaxRetries:      3,
			RetryBaseDelay:  2 * time.Second,
			RetryMaxDelay:   60 * time.Second,
			PerPage:         250,
		},
		Harvest: HarvestConfig{
			Concurrency: 4,
			ScoredOnly:  true,
		},
		Rating: RatingConfig{
			InitialMu:       25.0,
			InitialSigma:    25.0 / 3.0,
			Beta:            25.0 / 6.0,
			Tau:             25.0 / 300.0,
			DrawProbability: 0.1,
		},
		Output: OutputConfig{
			Directory:    "./ratings",
			WriteCSV:     true,
			WriteJSON:    true,
			WriteHistory: true,
			WriteMatches: true,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Backend:   "memory",
			TTL:       15 * time.Minute,
			RedisAddr: "localhost:6379",
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9090",
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			OnRateLimit:      true,
			ProgressInterval: 10,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("VEXRANK_TOKEN"); token != "" {
		c.API.Token = token
	}
	if baseURL := os.Getenv("VEXRANK_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if program := os.Getenv("VEXRANK_PROGRAM_ID"); program != "" {
		if val, err := strconv.Atoi(program); err == nil && val > 0 {
			c.API.ProgramID = val
		}
	}
	if interval := os.Getenv("VEXRANK_REQUEST_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			c.API.RequestInterval = d
		}
	}
	if retries := os.Getenv("VEXRANK_MAX_RETRIES"); retries != "" {
		if val, err := strconv.Atoi(retries); err == nil && val >= 0 {
			c.API.MaxRetries = val
		}
	}
	if seasons := os.Getenv("VEXRANK_SEASONS"); seasons != "" {
		c.Harvest.Seasons = parseSeasonList(seasons)
	}
	if filter := os.Getenv("VEXRANK_SEASON_FILTER"); filter != "" {
		c.Harvest.SeasonFilter = filter
	}
	if concurrency := os.Getenv("VEXRANK_CONCURRENCY"); concurrency != "" {
		if val, err := strconv.Atoi(concurrency); err == nil && val > 0 {
			c.Harvest.Concurrency = val
		}
	}
	if outputDir := os.Getenv("VEXRANK_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if enabled := os.Getenv("VEXRANK_CACHE_ENABLED"); enabled != "" {
		c.Cache.Enabled = strings.ToLower(enabled) == "true"
	}
	if addr := os.Getenv("VEXRANK_REDIS_ADDR"); addr != "" {
		c.Cache.RedisAddr = addr
	}
	if notifEnabled := os.Getenv("VEXRANK_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}
	if logLevel := os.Getenv("VEXRANK_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// parseSeasonList parses a comma separated list of season IDs
func parseSeasonList(s string) []int {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.Atoi(part); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".vexrank.yaml",
		".vexrank.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "vexrank", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "vexrank", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".vexrank.yaml"),
		filepath.Join(os.Getenv("HOME"), ".vexrank.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.API.ProgramID <= 0 {
		errs = append(errs, errors.New("program ID must be positive"))
	}
	if c.API.RequestInterval <= 0 {
		errs = append(errs, errors.New("request interval must be positive"))
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.API.PerPage <= 0 || c.API.PerPage > 250 {
		errs = append(errs, errors.New("per page must be between 1 and 250"))
	}

	if c.Harvest.Concurrency <= 0 {
		errs = append(errs, errors.New("harvest concurrency must be positive"))
	}
	if c.Harvest.Concurrency > 16 {
		errs = append(errs, errors.New("harvest concurrency should not exceed 16"))
	}

	if c.Rating.InitialSigma <= 0 {
		errs = append(errs, errors.New("initial sigma must be positive"))
	}
	if c.Rating.Beta <= 0 {
		errs = append(errs, errors.New("beta must be positive"))
	}
	if c.Rating.Tau < 0 {
		errs = append(errs, errors.New("tau cannot be negative"))
	}
	if c.Rating.DrawProbability < 0 || c.Rating.DrawProbability >= 1 {
		errs = append(errs, errors.New("draw probability must be in [0, 1)"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "memory", "redis":
	default:
		errs = append(errs, errors.New("cache backend must be memory or redis"))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache TTL must be positive"))
	}

	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		errs = append(errs, errors.New("metrics listen address is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.API.Token = token
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if program, ok := flags["program"].(int); ok && program > 0 {
		c.API.ProgramID = program
	}
	if interval, ok := flags["interval"].(time.Duration); ok && interval > 0 {
		c.API.RequestInterval = interval
	}
	if retries, ok := flags["max-retries"].(int); ok && retries >= 0 {
		c.API.MaxRetries = retries
	}
	if seasons, ok := flags["seasons"].(string); ok && seasons != "" {
		c.Harvest.Seasons = parseSeasonList(seasons)
	}
	if filter, ok := flags["season-filter"].(string); ok && filter != "" {
		c.Harvest.SeasonFilter = filter
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Harvest.Concurrency = concurrency
	}
	if scored, ok := flags["scored-only"].(bool); ok {
		c.Harvest.ScoredOnly = scored
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vexrank.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

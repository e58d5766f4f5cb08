// Package logger provides a structured logging interface for the harvester
// and rating pipeline.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional JSON file output
// - Context support for request tracing
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "vexrank/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/vexrank.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Harvest started")
//	logger.WithField("season_id", 181).Info("Season discovered")
//	logger.WithError(err).Error("Failed to fetch division")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "harvester").
//	    WithField("event_id", 45821)
//
//	// Use structured logging
//	log.InfoWithFields("Division harvested", map[string]interface{}{
//	    "division": 1,
//	    "matches":  96,
//	    "duration": time.Second * 5,
//	})
//
// The logger supports the following configuration options:
// - Level: Log level (debug, info, warn, error, fatal)
// - File: Path to log file (empty for console only)
package logger

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultLogFile      = "activity_log.csv"
	DefaultCategoryFile = "app_categories.json"
	DefaultAppLogFile   = "timetracker.log"

	// UnknownCategory marks records that never show up in summaries
	UnknownCategory = "Unknown"
	// UncategorizedCategory is used when prompting is disabled
	UncategorizedCategory = "Uncategorized"

	configDirName = ".config/timetracker"
)

// Config holds all application configuration
type Config struct {
	// Files written and read by the tracker and analyzer
	Files FilesConfig

	// Tracker configuration
	Tracker TrackerConfig

	// Analysis configuration
	Analysis AnalysisConfig

	// Database configuration for the error store
	Database DatabaseConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig

	// Logging configuration
	Logging LoggingConfig
}

// FilesConfig holds data file locations
type FilesConfig struct {
	LogFile      string // CSV activity log
	CategoryFile string // JSON activity -> category map
	OutputDir    string // Directory for chart images
}

// TrackerConfig holds tracking behavior configuration
type TrackerConfig struct {
	PollInterval        time.Duration // How often to check focused window
	MinPollInterval     time.Duration // Minimum allowed poll interval
	MaxPollInterval     time.Duration // Maximum allowed poll interval
	InactivityThreshold time.Duration // Unmoved mouse time before a pause marker
}

// AnalysisConfig holds aggregation and chart settings
type AnalysisConfig struct {
	MinDuration           time.Duration // Records shorter than this are noise
	TimeZone              string
	SmallSegmentThreshold float64 // Pie slices below this percentage become "Other"
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file, empty means ~/.config/timetracker/timetracker.db
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// LoggingConfig holds application log settings
type LoggingConfig struct {
	Level string // zerolog level name
	File  string // Application log file, empty disables file output
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Files: FilesConfig{
			LogFile:      DefaultLogFile,
			CategoryFile: DefaultCategoryFile,
			OutputDir:    ".",
		},
		Tracker: TrackerConfig{
			PollInterval:        10 * time.Second,
			MinPollInterval:     1 * time.Second,
			MaxPollInterval:     300 * time.Second,
			InactivityThreshold: 600 * time.Second,
		},
		Analysis: AnalysisConfig{
			MinDuration:           5 * time.Second,
			TimeZone:              "Local",
			SmallSegmentThreshold: 3.0,
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/timetracker-%d.pid", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8765,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  DefaultAppLogFile,
		},
	}
}

// DefaultConfigPath returns ~/.config/timetracker/config.yaml
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDirName, "config.yaml")
}

// DefaultDBPath returns ~/.config/timetracker/timetracker.db, creating the directory
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(dir, "timetracker.db"), nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.InactivityThreshold < 0 {
		return fmt.Errorf("inactivity threshold cannot be negative")
	}

	if c.Analysis.MinDuration < 0 {
		return fmt.Errorf("minimum duration cannot be negative")
	}

	if c.Analysis.SmallSegmentThreshold < 0 || c.Analysis.SmallSegmentThreshold > 100 {
		return fmt.Errorf("small segment threshold must be between 0 and 100, got %.1f",
			c.Analysis.SmallSegmentThreshold)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Files.LogFile == "" {
		return fmt.Errorf("log file path cannot be empty")
	}

	if c.Files.CategoryFile == "" {
		return fmt.Errorf("category file path cannot be empty")
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// Location resolves Analysis.TimeZone
func (c *Config) Location() (*time.Location, error) {
	if c.Analysis.TimeZone == "" || c.Analysis.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Analysis.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.Analysis.TimeZone, err)
	}
	return loc, nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Files:
    Log File: %s
    Category File: %s
    Output Dir: %s
  Tracker:
    Poll Interval: %v
    Inactivity Threshold: %v
  Analysis:
    Min Duration: %v
    Time Zone: %s
  Database:
    Path: %s
  Daemon:
    PID File: %s
  Web:
    Host: %s
    Port: %d`,
		c.Files.LogFile,
		c.Files.CategoryFile,
		c.Files.OutputDir,
		c.Tracker.PollInterval,
		c.Tracker.InactivityThreshold,
		c.Analysis.MinDuration,
		c.Analysis.TimeZone,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Web.Host,
		c.Web.Port,
	)
}

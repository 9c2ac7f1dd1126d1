package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default and file values
func LoadFromEnv(cfg *Config) {
	if logFile := os.Getenv("TIMETRACKER_LOG_FILE"); logFile != "" {
		cfg.Files.LogFile = logFile
	}

	if categoryFile := os.Getenv("TIMETRACKER_CATEGORY_FILE"); categoryFile != "" {
		cfg.Files.CategoryFile = categoryFile
	}

	if outputDir := os.Getenv("TIMETRACKER_OUTPUT_DIR"); outputDir != "" {
		cfg.Files.OutputDir = outputDir
	}

	if pollInterval := os.Getenv("TIMETRACKER_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	if threshold := os.Getenv("TIMETRACKER_INACTIVITY_THRESHOLD"); threshold != "" {
		if seconds, err := strconv.Atoi(threshold); err == nil && seconds > 0 {
			cfg.Tracker.InactivityThreshold = time.Duration(seconds) * time.Second
		}
	}

	if minDuration := os.Getenv("TIMETRACKER_MIN_DURATION"); minDuration != "" {
		if seconds, err := strconv.Atoi(minDuration); err == nil && seconds >= 0 {
			cfg.Analysis.MinDuration = time.Duration(seconds) * time.Second
		}
	}

	if timeZone := os.Getenv("TIMETRACKER_TIMEZONE"); timeZone != "" {
		cfg.Analysis.TimeZone = timeZone
	}

	if dbPath := os.Getenv("TIMETRACKER_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if pidFile := os.Getenv("TIMETRACKER_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if webHost := os.Getenv("TIMETRACKER_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("TIMETRACKER_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}

	if level := os.Getenv("TIMETRACKER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if appLog, ok := os.LookupEnv("TIMETRACKER_APP_LOG"); ok {
		cfg.Logging.File = appLog
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}

// Load applies defaults, then the YAML file at path (if any), then the environment
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := LoadFromFile(cfg, path); err != nil {
		return nil, err
	}
	LoadFromEnv(cfg)
	return cfg, nil
}

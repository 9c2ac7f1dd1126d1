package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML layout; durations are given in seconds
type fileConfig struct {
	LogFile      string `yaml:"log_file"`
	CategoryFile string `yaml:"category_file"`
	OutputDir    string `yaml:"output_dir"`

	Tracker struct {
		PollInterval        int `yaml:"poll_interval"`
		InactivityThreshold int `yaml:"inactivity_threshold"`
	} `yaml:"tracker"`

	Analysis struct {
		MinDuration           *int     `yaml:"min_duration"`
		TimeZone              string   `yaml:"time_zone"`
		SmallSegmentThreshold *float64 `yaml:"small_segment_threshold"`
	} `yaml:"analysis"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Daemon struct {
		PIDFile string `yaml:"pid_file"`
	} `yaml:"daemon"`

	Web struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"web"`

	Logging struct {
		Level string  `yaml:"level"`
		File  *string `yaml:"file"`
	} `yaml:"logging"`
}

// LoadFromFile overlays the YAML file at path on cfg. A missing file is not an error.
func LoadFromFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.LogFile != "" {
		cfg.Files.LogFile = fc.LogFile
	}
	if fc.CategoryFile != "" {
		cfg.Files.CategoryFile = fc.CategoryFile
	}
	if fc.OutputDir != "" {
		cfg.Files.OutputDir = fc.OutputDir
	}
	if fc.Tracker.PollInterval > 0 {
		cfg.Tracker.PollInterval = time.Duration(fc.Tracker.PollInterval) * time.Second
	}
	if fc.Tracker.InactivityThreshold > 0 {
		cfg.Tracker.InactivityThreshold = time.Duration(fc.Tracker.InactivityThreshold) * time.Second
	}
	if fc.Analysis.MinDuration != nil {
		cfg.Analysis.MinDuration = time.Duration(*fc.Analysis.MinDuration) * time.Second
	}
	if fc.Analysis.TimeZone != "" {
		cfg.Analysis.TimeZone = fc.Analysis.TimeZone
	}
	if fc.Analysis.SmallSegmentThreshold != nil {
		cfg.Analysis.SmallSegmentThreshold = *fc.Analysis.SmallSegmentThreshold
	}
	if fc.Database.Path != "" {
		cfg.Database.Path = fc.Database.Path
	}
	if fc.Daemon.PIDFile != "" {
		cfg.Daemon.PIDFile = fc.Daemon.PIDFile
	}
	if fc.Web.Host != "" {
		cfg.Web.Host = fc.Web.Host
	}
	if fc.Web.Port != 0 {
		cfg.Web.Port = fc.Web.Port
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.File != nil {
		cfg.Logging.File = *fc.Logging.File
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"PhysioAlign/internal/model"
)

// Subject groups the input files that are resampled and merged together:
// one glucose (CGM) file and one or more ECG waveform files.
type Subject struct {
	ID        string   `yaml:"id"`
	CGMFile   string   `yaml:"cgm_file"`
	ECGFiles  []string `yaml:"ecg_files"`
	OutputDir string   `yaml:"output_dir"`
}

// Config holds all application configuration.
type Config struct {
	Join      string    `yaml:"join"`
	OutputDir string    `yaml:"output_dir"`
	Subjects  []Subject `yaml:"subjects"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("JOIN_MODE"); v != "" {
		cfg.Join = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}

	// Defaults
	if cfg.Join == "" {
		cfg.Join = string(model.JoinInner)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data/processed"
	}
	for i := range cfg.Subjects {
		if cfg.Subjects[i].OutputDir == "" {
			cfg.Subjects[i].OutputDir = filepath.Join(cfg.OutputDir, cfg.Subjects[i].ID)
		}
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if _, err := model.ParseJoinMode(c.Join); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	if len(c.Subjects) == 0 {
		return fmt.Errorf("at least one subject is required")
	}
	seen := make(map[string]bool, len(c.Subjects))
	for i, sub := range c.Subjects {
		if sub.ID == "" {
			return fmt.Errorf("subjects[%d]: id is required", i)
		}
		if seen[sub.ID] {
			return fmt.Errorf("subjects[%d]: duplicate id %q", i, sub.ID)
		}
		seen[sub.ID] = true
		if sub.CGMFile == "" {
			return fmt.Errorf("subject %s: cgm_file is required", sub.ID)
		}
		if len(sub.ECGFiles) == 0 {
			return fmt.Errorf("subject %s: at least one ecg file is required", sub.ID)
		}
	}
	return nil
}

// JoinMode returns the validated join mode. Call Validate first.
func (c *Config) JoinMode() model.JoinMode {
	mode, _ := model.ParseJoinMode(c.Join)
	return mode
}

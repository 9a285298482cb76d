// Package config handles configuration loading and validation for taskflow.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Services    Services  `yaml:"services"`
	OperatorID  string    `yaml:"operator_id"`
	Project     string    `yaml:"project"` // default for --project
	APIToken    string    `yaml:"api_token"`
	TimeoutMs   int       `yaml:"timeout_ms"`
	MaxRetries  int       `yaml:"max_retries"`
	JournalPath string    `yaml:"journal_path"`
	Locale      string    `yaml:"locale"`
	Log         LogConfig `yaml:"log"`
	DataDir     string    `yaml:"-"` // set by caller, not from config file
}

// Services holds the base URL of each backend service.
type Services struct {
	Sprints       string `yaml:"sprints"`
	Tasks         string `yaml:"tasks"`
	Projects      string `yaml:"projects"`
	Notifications string `yaml:"notifications"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty logs to stderr
}

// DefaultConfig returns a Config pointing at a local development deployment.
func DefaultConfig() Config {
	return Config{
		Services: Services{
			Sprints:       "http://localhost:8084",
			Tasks:         "http://localhost:8085",
			Projects:      "http://localhost:8083",
			Notifications: "http://localhost:8089",
		},
		TimeoutMs:  5000,
		MaxRetries: 1,
		Locale:     "en",
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultDataDir returns ~/.taskflow, falling back to a relative directory
// when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskflow"
	}
	return filepath.Join(home, ".taskflow")
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if cfg.JournalPath == "" && dataDir != "" {
		cfg.JournalPath = filepath.Join(dataDir, "journal.db")
	}

	return &cfg, nil
}

// ApplyEnv overlays TASKFLOW_* environment variables onto the configuration.
// Unparseable numeric values are ignored and the previous value kept.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("TASKFLOW_SPRINTS_URL", &c.Services.Sprints)
	setString("TASKFLOW_TASKS_URL", &c.Services.Tasks)
	setString("TASKFLOW_PROJECTS_URL", &c.Services.Projects)
	setString("TASKFLOW_NOTIFICATIONS_URL", &c.Services.Notifications)
	setString("TASKFLOW_OPERATOR_ID", &c.OperatorID)
	setString("TASKFLOW_PROJECT", &c.Project)
	setString("TASKFLOW_API_TOKEN", &c.APIToken)
	setString("TASKFLOW_JOURNAL", &c.JournalPath)
	setString("TASKFLOW_LOCALE", &c.Locale)
	setString("TASKFLOW_LOG_LEVEL", &c.Log.Level)
	setString("TASKFLOW_LOG_FILE", &c.Log.File)

	if v := getenv("TASKFLOW_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutMs = n
		}
	}
	if v := getenv("TASKFLOW_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

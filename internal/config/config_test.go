package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "nope.yaml"), dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8084", cfg.Services.Sprints)
	assert.Equal(t, 5000, cfg.TimeoutMs)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "journal.db"), cfg.JournalPath)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
services:
  sprints: https://sprints.example.com
  tasks: https://tasks.example.com
timeout_ms: 1500
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "https://sprints.example.com", cfg.Services.Sprints)
	assert.Equal(t, "https://tasks.example.com", cfg.Services.Tasks)
	assert.Equal(t, "http://localhost:8083", cfg.Services.Projects, "unset keys keep defaults")
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: [unclosed"), 0o644))

	_, err := Load(path, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TASKFLOW_SPRINTS_URL": "https://s.example.com",
		"TASKFLOW_OPERATOR_ID": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"TASKFLOW_TIMEOUT_MS":  "250",
		"TASKFLOW_MAX_RETRIES": "not-a-number",
		"TASKFLOW_LOG_LEVEL":   "info",
		"TASKFLOW_PROJECT":     "p-42",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "https://s.example.com", cfg.Services.Sprints)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", cfg.OperatorID)
	assert.Equal(t, 250, cfg.TimeoutMs)
	assert.Equal(t, 1, cfg.MaxRetries, "bad value keeps previous")
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "p-42", cfg.Project)
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty service url", func(c *Config) { c.Services.Tasks = "" }, "services.tasks"},
		{"non-http scheme", func(c *Config) { c.Services.Sprints = "ftp://x" }, "services.sprints"},
		{"relative url", func(c *Config) { c.Services.Projects = "/api" }, "services.projects"},
		{"zero timeout", func(c *Config) { c.TimeoutMs = 0 }, "timeout_ms"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max_retries"},
		{"bad operator", func(c *Config) { c.OperatorID = "bob" }, "operator_id"},
		{"bad locale", func(c *Config) { c.Locale = "not a locale!" }, "locale"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}
}

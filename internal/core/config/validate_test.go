package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/toastq/internal/core/notify"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field)
	}
	return names
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"zero capacity", func(c *Config) { c.Toasts.Capacity = 0 }, "toasts.capacity"},
		{"negative remove delay", func(c *Config) { c.Toasts.RemoveDelay = -1 }, "toasts.remove_delay"},
		{"zero duration", func(c *Config) { c.Toasts.Durations[notify.SeverityError] = 0 }, "toasts.durations.error"},
		{"unknown severity", func(c *Config) { c.Toasts.Durations["fatal"] = 1 }, "toasts.durations.fatal"},
		{"negative retention", func(c *Config) { c.History.Retention = -5 }, "history.retention"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"narrow tui", func(c *Config) { c.TUI.Width = 5 }, "tui.width"},
		{"unknown theme", func(c *Config) { c.TUI.Theme = "solarized" }, "tui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, fieldNames(t, err), tt.field)
		})
	}
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("toasts: {}\n"), 0o644))

	assert.NoError(t, cfg.ValidateDeep(path))
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())
	assert.Contains(t, fieldNames(t, err), "config_file")
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")
	assert.Contains(t, fieldNames(t, err), "data_dir")
}

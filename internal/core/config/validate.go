package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/toastq/internal/core/styles"
)

const minTUIWidth = 20

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, required),
		c.validateToasts(),
		criterio.Run("history.retention", c.History.Retention, nonNegative),
		criterio.Run("server.addr", c.Server.Addr, required),
		criterio.Run("tui.width", c.TUI.Width, atLeast(minTUIWidth)),
		criterio.Run("tui.theme", c.TUI.Theme, knownTheme),
	)
}

// ValidateDeep performs Validate plus file system checks. The configPath
// argument specifies the config file location to check (empty string skips
// the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func (c *Config) validateToasts() error {
	var errs criterio.FieldErrorsBuilder

	if c.Toasts.Capacity < 1 {
		errs = errs.Append("toasts.capacity", fmt.Errorf("must be at least 1"))
	}
	if c.Toasts.RemoveDelay < 0 {
		errs = errs.Append("toasts.remove_delay", fmt.Errorf("must not be negative"))
	}
	for sev, d := range c.Toasts.Durations {
		field := fmt.Sprintf("toasts.durations.%s", sev)
		if !sev.Valid() {
			errs = errs.Append(field, fmt.Errorf("unknown severity %q", sev))
			continue
		}
		if d <= 0 {
			errs = errs.Append(field, fmt.Errorf("must be positive"))
		}
	}

	return errs.ToError()
}

func required(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func nonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func atLeast(minimum int) func(int) error {
	return func(n int) error {
		if n < minimum {
			return fmt.Errorf("must be at least %d", minimum)
		}
		return nil
	}
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

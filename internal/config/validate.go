package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShell(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShell() error {
	switch c.Shell.Mode {
	case "", ModeDevelopment, ModePackaged:
	default:
		return fmt.Errorf("shell.mode must be %q or %q, got %q", ModeDevelopment, ModePackaged, c.Shell.Mode)
	}
	if c.Shell.AppID == "" {
		return errors.New("shell.app_id must be set")
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.StopGraceSeconds < 0 {
		return errors.New("backend.stop_grace_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

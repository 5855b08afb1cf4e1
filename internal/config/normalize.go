package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeShell()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBackend(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeShell() {
	c.Shell.AppID = strings.TrimSpace(c.Shell.AppID)
	if c.Shell.AppID == "" {
		c.Shell.AppID = defaultAppID
	}
	if value, ok := os.LookupEnv("PLUTOSHELL_MODE"); ok && strings.TrimSpace(value) != "" {
		c.Shell.Mode = value
	}
	c.Shell.Mode = strings.ToLower(strings.TrimSpace(c.Shell.Mode))
	switch c.Shell.Mode {
	case "dev":
		c.Shell.Mode = ModeDevelopment
	case "release", "prod", "production":
		c.Shell.Mode = ModePackaged
	}
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataRoot) == "" {
		if value, ok := os.LookupEnv("PLUTOSHELL_DATA_ROOT"); ok {
			c.Paths.DataRoot = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Paths.SourceRoot, err = expandPath(strings.TrimSpace(c.Paths.SourceRoot)); err != nil {
		return fmt.Errorf("paths.source_root: %w", err)
	}
	if c.Paths.ResourceDir, err = expandPath(strings.TrimSpace(c.Paths.ResourceDir)); err != nil {
		return fmt.Errorf("paths.resource_dir: %w", err)
	}
	if c.Paths.DataRoot, err = expandPath(strings.TrimSpace(c.Paths.DataRoot)); err != nil {
		return fmt.Errorf("paths.data_root: %w", err)
	}
	return nil
}

func (c *Config) normalizeBackend() error {
	if strings.TrimSpace(c.Backend.Binary) == "" {
		if value, ok := os.LookupEnv("PLUTOSHELL_BACKEND_BINARY"); ok {
			c.Backend.Binary = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Backend.Binary, err = expandPath(strings.TrimSpace(c.Backend.Binary)); err != nil {
		return fmt.Errorf("backend.binary: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

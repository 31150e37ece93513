package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validatePlex(); err != nil {
		return err
	}
	return c.validateReconcile()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" && c.Plex.Token == "" {
		return nil
	}
	if c.Plex.URL == "" || c.Plex.Token == "" {
		return errors.New("plex.url and plex.token must be set together")
	}
	if c.Plex.RequestTimeout <= 0 {
		return errors.New("plex.request_timeout must be positive")
	}
	if c.Plex.RequestsPerSec <= 0 {
		return errors.New("plex.requests_per_sec must be positive")
	}
	return nil
}

func (c *Config) validateReconcile() error {
	if c.Reconcile.ThresholdPercent < 0 || c.Reconcile.ThresholdPercent > 100 {
		return errors.New("reconcile.threshold_percent must be between 0 and 100")
	}
	return nil
}

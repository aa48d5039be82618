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
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.SniffBytes <= 0 {
		return errors.New("analysis.sniff_bytes must be positive")
	}
	if c.Analysis.PollInterval <= 0 {
		return errors.New("analysis.poll_interval must be positive")
	}
	if c.Analysis.MaxUploadMiB <= 0 {
		return errors.New("analysis.max_upload_mib must be positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	// An empty API key is allowed: analyses complete with device identity
	// only and are recorded as unscored.
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return nil
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return errors.New("llm.base_url must be set when llm.api_key is configured")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must be set when llm.api_key is configured")
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

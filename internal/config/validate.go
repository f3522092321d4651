package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is internally consistent. Requirements
// that only apply to one pipeline live in ValidateForMerge and ValidateForPublish.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateForMerge reports whether the normalizer has inputs and an output.
func (c *Config) ValidateForMerge() error {
	if len(c.Merge.Inputs) == 0 {
		return errors.New("merge.inputs is required. Set CSV_INS_WITH_CHAPTER (name|path|chapter,...) or edit the config file")
	}
	if c.Merge.Output == "" {
		return errors.New("merge.output is required. Set CSV_UPANISHADS or CSV_OUT")
	}
	return nil
}

// ValidateForPublish reports whether a publish run can start.
func (c *Config) ValidateForPublish() error {
	if c.API.URL == "" {
		return errors.New("api.url is required. Set API_URL or edit the config file (create with 'sutrasync config init')")
	}
	if c.API.Email == "" {
		return errors.New("api.email is required. Set EMAIL (or USERNAME)")
	}
	if c.Publish.CSVPath == "" {
		return errors.New("publish.csv_path is required. Set CSV_UPANISHADS or CSV_PATH")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.URL != "" {
		parsed, err := url.Parse(c.API.URL)
		if err != nil {
			return fmt.Errorf("api.url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("api.url must use http or https, got %q", c.API.URL)
		}
	}
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must not be negative")
	}
	if c.API.RequestsPerSecond < 0 {
		return errors.New("api.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

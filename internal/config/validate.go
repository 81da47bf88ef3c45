package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.FramesDir) == "" {
		return errors.New("paths.frames_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if err := ensureSampleRange("segmentation.diff_threshold", c.Segmentation.DiffThreshold); err != nil {
		return err
	}
	if err := ensureSampleRange("segmentation.blank_threshold", c.Segmentation.BlankThreshold); err != nil {
		return err
	}
	if c.Segmentation.MinSegmentDuration < 0 {
		return errors.New("segmentation.min_segment_duration must be >= 0")
	}
	if c.Segmentation.Workers < 1 {
		return errors.New("segmentation.workers must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "tint":
	default:
		return fmt.Errorf("logging.format must be one of console, json, tint (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}

func ensureSampleRange(key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", key)
	}
	if value < 0 || value > 255 {
		return fmt.Errorf("%s must be between 0 and 255 (got %g)", key, value)
	}
	return nil
}

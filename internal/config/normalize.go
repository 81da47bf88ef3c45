package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize(env envLookup) error {
	if err := c.normalizePaths(env); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeSegmentation()
	return c.normalizeLogging(env)
}

func (c *Config) normalizePaths(env envLookup) error {
	for _, fallback := range []struct {
		target *string
		key    string
	}{
		{&c.Paths.FramesDir, "SUBSEG_FRAMES_DIR"},
		{&c.Paths.OutputDir, "SUBSEG_OUTPUT_DIR"},
		{&c.Paths.StateDir, "SUBSEG_STATE_DIR"},
	} {
		if value, ok := env(fallback.key); ok && strings.TrimSpace(value) != "" {
			*fallback.target = strings.TrimSpace(value)
		}
	}

	if strings.TrimSpace(c.Paths.FramesDir) == "" {
		c.Paths.FramesDir = defaultFramesDir
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}

	var err error
	if c.Paths.FramesDir, err = expandPath(c.Paths.FramesDir); err != nil {
		return fmt.Errorf("paths.frames_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile == "" {
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeSegmentation() {
	if c.Segmentation.Workers == 0 {
		c.Segmentation.Workers = defaultWorkers()
	}
}

func (c *Config) normalizeLogging(env envLookup) error {
	if value, ok := env("SUBSEG_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subseg/internal/config"
	"subseg/internal/history"
	"subseg/internal/logging"
	"subseg/internal/metrics"
	"subseg/internal/pipeline"
	"subseg/internal/runctx"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = runctx.Wrap(runctx.ErrConfiguration, "config", "load", "", err)
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = runctx.Wrap(runctx.ErrConfiguration, "config", "validate", "", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = runctx.Wrap(runctx.ErrConfiguration, "logging", "init", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// openHistory returns nil when run history is disabled.
func (c *commandContext) openHistory(ctx context.Context, cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	return store, nil
}

// runnerSession bundles the collaborators one command invocation needs.
type runnerSession struct {
	runner   *pipeline.Runner
	history  *history.Store
	metrics  *metrics.Metrics
	textfile string
	logger   *slog.Logger
}

func (c *commandContext) newRunnerSession(ctx context.Context, cfg *config.Config, metricsFile string) (*runnerSession, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, runctx.Wrap(runctx.ErrOutput, "cli", "prepare directories", "", err)
	}
	store, err := c.openHistory(ctx, cfg)
	if err != nil {
		logger.Warn("run history unavailable; continuing without it", logging.Error(err))
		store = nil
	}

	session := &runnerSession{history: store, logger: logger, textfile: cfg.Metrics.Textfile}
	if metricsFile != "" {
		session.textfile = metricsFile
	}
	if session.textfile != "" {
		session.metrics = metrics.New()
	}
	session.runner = pipeline.New(pipeline.Options{Logger: logger, History: store, Metrics: session.metrics})
	return session, nil
}

func (s *runnerSession) close() {
	if s.metrics != nil {
		if err := s.metrics.WriteTextfile(s.textfile); err != nil {
			s.logger.Warn("metrics textfile not written", logging.Error(err))
		}
	}
	if s.history != nil {
		_ = s.history.Close()
	}
}

func (c *commandContext) configSource() string {
	if c.configExists {
		return c.configPath
	}
	return "defaults"
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"photoreel/internal/config"
	"photoreel/internal/logging"
	"photoreel/internal/notifications"
	"photoreel/internal/transform"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
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
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// transformer returns a Transformer wired from the loaded config.
func (c *commandContext) transformer() (*transform.Transformer, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	return transform.NewFromConfig(cfg, logger), cfg, nil
}

// notify sends one event through the configured notifier. Delivery failures
// are logged and never fail the command.
func (c *commandContext) notify(event string, send func(notifications.Service) error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	if err := send(notifications.NewService(cfg)); err != nil {
		logger, logErr := c.ensureLogger()
		if logErr != nil {
			return
		}
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", event),
			logging.Error(err),
			logging.String(logging.FieldImpact, "operator was not alerted"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

// skipConfigLoadAnnotation marks commands that run without a loaded config.
const skipConfigLoadAnnotation = "skipConfigLoad"

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations[skipConfigLoadAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

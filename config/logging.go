package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies the log section to the standard logrus logger
func ConfigureLogging(cfg LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logrus.SetLevel(level)

	switch cfg.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q (supported: text, json)", cfg.Format)
	}
	return nil
}

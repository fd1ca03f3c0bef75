// Package logging configures the process-wide logrus logger from config.
package logging

import (
	"github.com/sirupsen/logrus"

	"vertexadapters/internal/config"
)

// Setup applies log level and format from config to the standard logger.
// Unknown levels fall back to info.
func Setup(cfg *config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

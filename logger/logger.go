// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"daisychart/config"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogLevel overrides the configured level, matching the usual deployment convention.
const EnvLogLevel = "LOG_LEVEL"

// Configure sets up the standard logrus logger, which all packages log to.
func Configure(c config.LogConfig) {
	Apply(logrus.StandardLogger(), c)
}

// Apply configures l. A file output is rotated, stderr is used otherwise.
func Apply(l *logrus.Logger, c config.LogConfig) {
	level := c.Level
	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if c.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetOutput(output(c))
}

func output(c config.LogConfig) io.Writer {
	if c.File == "" {
		return os.Stderr
	}
	maxSize := c.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	return &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    maxSize,
		MaxBackups: c.MaxBackups,
		Compress:   true,
	}
}

func WithComponent(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

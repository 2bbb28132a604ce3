// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"daisychart/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

func TestApplyJSON(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	l := logrus.New()
	Apply(l, config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithField("component", "test").Debug("hello")

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "hello", m["message"])
	assert.Equal(t, "test", m["component"])
}

func TestApplyEnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	l := logrus.New()
	Apply(l, config.LogConfig{Level: "debug"})
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
}

func TestApplyInvalidLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	l := logrus.New()
	Apply(l, config.LogConfig{Level: "chatty"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.Equal(t, os.Stderr, l.Out)
}

func TestApplyFileRotation(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	f := filepath.Join(t.TempDir(), "chart.log")
	l := logrus.New()
	Apply(l, config.LogConfig{File: f})
	lj, ok := l.Out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, f, lj.Filename)
	assert.Equal(t, 10, lj.MaxSize)

	l.Info("rotated")
	require.NoError(t, lj.Close())
	assert.FileExists(t, f)
}

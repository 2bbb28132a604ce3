// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package config

import (
	"os"
	"strconv"

	"daisychart/stockval"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	EnvDataUrl  = "DAISY_DATA_URL"
	EnvWsUrl    = "DAISY_WS_URL"
	EnvTicker   = "DAISY_TICKER"
	EnvInterval = "DAISY_INTERVAL"
	EnvPeriod   = "DAISY_PERIOD"
	EnvLogLevel = "DAISY_LOG_LEVEL"
	EnvRateRps  = "DAISY_RATE_LIMIT"
)

// LoadEnv reads the given dotenv files into the process environment.
// Missing files are ignored, existing variables are not overwritten.
func LoadEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.WithError(err).WithField("file", f).Warn("failed to load env file")
		}
	}
}

// ApplyEnv overrides settings from DAISY_* variables. The result is not meant to be stored.
func ApplyEnv(a *AppConfig) {
	a.Sanitize()
	b := a.BrokerConfig[stockval.BrokerDaisy]
	if v, ok := os.LookupEnv(EnvDataUrl); ok && v != "" {
		b.DataUrl = v
	}
	if v, ok := os.LookupEnv(EnvWsUrl); ok && v != "" {
		b.WsUrl = v
	}
	if v, ok := os.LookupEnv(EnvRateRps); ok {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			b.RateLimitPerSecond = rps
		} else {
			log.WithField("value", v).Warn("ignoring invalid " + EnvRateRps)
		}
	}
	a.BrokerConfig[stockval.BrokerDaisy] = b

	if v, ok := os.LookupEnv(EnvTicker); ok && v != "" {
		a.Chart.Ticker = v
	}
	if v, ok := os.LookupEnv(EnvInterval); ok && v != "" {
		a.Chart.Interval = v
	}
	if v, ok := os.LookupEnv(EnvPeriod); ok && v != "" {
		a.Chart.Period = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		a.Log.Level = v
	}
	a.Sanitize()
}

type envConfig struct {
	Config
}

// WithEnv returns a view of c whose copies carry the environment overrides.
// Locked configurations are passed through unchanged, so overrides are never stored.
func WithEnv(c Config) Config {
	return envConfig{Config: c}
}

func (e envConfig) Copy() (AppConfig, error) {
	a, err := e.Config.Copy()
	if err != nil {
		return a, err
	}
	ApplyEnv(&a)
	return a, nil
}

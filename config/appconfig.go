// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package config

import (
	"daisychart/stockval"

	"github.com/barkimedes/go-deepcopy"
)

type AppConfig struct {
	Log          LogConfig
	BrokerConfig map[stockval.BrokerId]BrokerConfig
	Chart        ChartConfig
	Metrics      MetricsConfig `yaml:",omitempty"`
}

type LogConfig struct {
	Level string `yaml:",omitempty"`
	// Format is "text" or "json".
	Format string `yaml:",omitempty"`
	// Log rotation is used if a file is set.
	File       string `yaml:",omitempty"`
	MaxSizeMB  int    `yaml:",omitempty"`
	MaxBackups int    `yaml:",omitempty"`
}

type BrokerConfig struct {
	DataUrl string `yaml:",omitempty"`
	// WsUrl is derived from DataUrl if empty.
	WsUrl              string  `yaml:",omitempty"`
	RateLimitPerSecond float64 `yaml:",omitempty"`
	DataTimeoutSeconds int     `yaml:",omitempty"`
}

type MetricsConfig struct {
	// ListenAddr enables the prometheus endpoint, e.g. ":9090".
	ListenAddr string `yaml:",omitempty"`
}

var defaultBrokerConfig = NewBrokerConfigMap()

func NewAppConfig() AppConfig {
	return AppConfig{
		Log:          LogConfig{Level: "info", Format: "text"},
		BrokerConfig: NewBrokerConfigMap(),
		Chart:        NewChartConfig(),
	}
}

func NewBrokerConfigMap() map[stockval.BrokerId]BrokerConfig {
	return map[stockval.BrokerId]BrokerConfig{
		stockval.BrokerDaisy: {
			DataUrl:            "http://localhost:8000",
			RateLimitPerSecond: 5,
			DataTimeoutSeconds: 10,
		},
	}
}

func (a *AppConfig) deepCopy() AppConfig {
	c, err := deepcopy.Anything(a)
	if err != nil {
		panic(err)
	}
	return *c.(*AppConfig)
}

func (a *AppConfig) Sanitize() {
	if a.BrokerConfig == nil {
		a.BrokerConfig = make(map[stockval.BrokerId]BrokerConfig)
	}
	if a.Log.Format != "json" {
		a.Log.Format = "text"
	}
	if a.Log.Level == "" {
		a.Log.Level = "info"
	}
	a.Chart.sanitize()
	a.RestoreDefaults()
}

// We do not want to store certain default values in the configuration file,
// in order to avoid having to patch them.
func (a *AppConfig) RemoveDefaults() {
	for key, c := range a.BrokerConfig {
		def := defaultBrokerConfig[key]
		if c.DataUrl == def.DataUrl {
			c.DataUrl = ""
		}
		if c.RateLimitPerSecond == def.RateLimitPerSecond {
			c.RateLimitPerSecond = 0
		}
		if c.DataTimeoutSeconds == def.DataTimeoutSeconds {
			c.DataTimeoutSeconds = 0
		}
		a.BrokerConfig[key] = c
	}
}

// Restore certain default values which are not stored in the configuration file.
func (a *AppConfig) RestoreDefaults() {
	for key, def := range defaultBrokerConfig {
		if _, ok := a.BrokerConfig[key]; !ok {
			a.BrokerConfig[key] = def
		}
	}
	for key, c := range a.BrokerConfig {
		def := defaultBrokerConfig[key]
		if len(c.DataUrl) == 0 {
			c.DataUrl = def.DataUrl
		}
		if c.RateLimitPerSecond <= 0 {
			c.RateLimitPerSecond = def.RateLimitPerSecond
		}
		if c.DataTimeoutSeconds <= 0 {
			c.DataTimeoutSeconds = def.DataTimeoutSeconds
		}
		a.BrokerConfig[key] = c
	}
}

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package service // import "github.com/grpcarch/otlpbatch/service"

import (
	"errors"
	"strings"
	"time"

	"github.com/grpcarch/otlpbatch/exporter/otlpexporter"
	"github.com/grpcarch/otlpbatch/service/telemetry"
)

// Config defines the configuration of the telemetry pipeline of a process.
type Config struct {
	// Exporter configures the connection shared in shape by all three
	// signals; every signal still gets its own connection.
	Exporter *otlpexporter.Config `mapstructure:"exporter"`

	// RequestMetrics configures the request metrics aggregator.
	RequestMetrics RequestMetricsConfig `mapstructure:"request_metrics"`

	// Logs configures the process logger.
	Logs telemetry.LogsConfig `mapstructure:"logs"`
}

// RequestMetricsConfig configures RequestMetrics.
type RequestMetricsConfig struct {
	// Interval between two snapshot exports.
	// (default = 10s)
	Interval time.Duration `mapstructure:"interval"`

	// Prefix of every metric name. When empty it is derived from the
	// service name.
	Prefix string `mapstructure:"prefix"`
}

// NewDefaultConfig returns the default configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Exporter: otlpexporter.NewDefaultConfig(),
		RequestMetrics: RequestMetricsConfig{
			Interval: 10 * time.Second,
		},
		Logs: telemetry.NewDefaultLogsConfig(),
	}
}

// Validate checks the settings that New relies on. Exporter settings are
// validated per signal when the exporters are built.
func (cfg *Config) Validate() error {
	if cfg.Exporter == nil {
		return errors.New("missing exporter configuration")
	}
	if cfg.RequestMetrics.Interval <= 0 {
		return errors.New("request_metrics::interval must be positive")
	}
	return nil
}

func (cfg *Config) metricPrefix() string {
	if cfg.RequestMetrics.Prefix != "" {
		return cfg.RequestMetrics.Prefix
	}
	return sanitizeMetricName(cfg.Exporter.ServiceName)
}

// sanitizeMetricName replaces every character that is not allowed in a
// metric name with an underscore.
func sanitizeMetricName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/grpcarch/otlpbatch/config/configgrpc"
	"github.com/grpcarch/otlpbatch/exporter/exporterhelper"
)

// Config defines configuration for the OTLP exporters.
type Config struct {
	exporterhelper.TimeoutSettings `mapstructure:",squash"` // squash ensures fields are correctly decoded in embedded struct.
	exporterhelper.BatchSettings   `mapstructure:",squash"`
	configgrpc.ClientSettings      `mapstructure:",squash"`

	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is reported as service.version when set.
	ServiceVersion string `mapstructure:"service_version"`
}

// NewDefaultConfig returns the default exporter configuration. Endpoint and
// ServiceName have no default.
func NewDefaultConfig() *Config {
	return &Config{
		TimeoutSettings: exporterhelper.NewDefaultTimeoutSettings(),
		BatchSettings:   exporterhelper.NewDefaultBatchSettings(),
		ClientSettings: configgrpc.ClientSettings{
			Headers: map[string]string{},
		},
	}
}

// Validate checks if the exporter configuration is valid.
func (cfg *Config) Validate() error {
	var errs error
	if cfg.Endpoint == "" {
		errs = multierr.Append(errs, errors.New(`requires a non-empty "endpoint"`))
	}
	if cfg.ServiceName == "" {
		errs = multierr.Append(errs, errors.New(`requires a non-empty "service_name"`))
	}
	if cfg.Timeout < 0 {
		errs = multierr.Append(errs, errors.New("`timeout` must not be negative"))
	}
	errs = multierr.Append(errs, cfg.ClientSettings.Validate())
	return multierr.Append(errs, cfg.BatchSettings.Validate())
}

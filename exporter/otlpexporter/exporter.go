// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

import (
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/grpcarch/otlpbatch/exporter/exporterhelper"
	"github.com/grpcarch/otlpbatch/obsreport"
)

const (
	signalTraces  = "traces"
	signalLogs    = "logs"
	signalMetrics = "metrics"
)

// Settings carries the ambient dependencies of an exporter.
type Settings struct {
	// Logger receives export failures and partial success warnings. Nil
	// disables logging.
	Logger *zap.Logger
	// Metrics collects self-observability counters. Nil keeps them
	// unregistered.
	Metrics *obsreport.Metrics
	// DialOptions are appended to the options derived from the config.
	DialOptions []grpc.DialOption
}

func (set Settings) logger(signal string) *zap.Logger {
	if set.Logger == nil {
		return zap.NewNop()
	}
	return set.Logger.With(zap.String("signal", signal))
}

func (set Settings) obsrep(signal string) *obsreport.Exporter {
	if set.Metrics == nil {
		return obsreport.NewNopExporter(signal)
	}
	return set.Metrics.Exporter(signal)
}

// newSender validates cfg and creates the gRPC sender shared by the three
// constructors.
func newSender(cfg *Config, set Settings, signal string) (*grpcSender, exporterhelper.Settings, error) {
	if err := cfg.Validate(); err != nil {
		return nil, exporterhelper.Settings{}, fmt.Errorf("invalid %s exporter config: %w", signal, err)
	}
	logger := set.logger(signal)
	sender, err := newGrpcSender(cfg, logger, set.DialOptions...)
	if err != nil {
		return nil, exporterhelper.Settings{}, err
	}
	return sender, exporterhelper.Settings{Logger: logger, ObsRep: set.obsrep(signal)}, nil
}

func helperOptions(cfg *Config, sender *grpcSender) []exporterhelper.Option {
	return []exporterhelper.Option{
		exporterhelper.WithTimeout(cfg.TimeoutSettings),
		exporterhelper.WithBatch(cfg.BatchSettings),
		exporterhelper.WithShutdown(sender.stop),
	}
}

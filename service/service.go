// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package service wires the three OTLP exporters and the request metrics
// aggregator into one handle that an instrumented process owns from startup
// to shutdown.
package service // import "github.com/grpcarch/otlpbatch/service"

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/grpcarch/otlpbatch/exporter/otlpexporter"
	"github.com/grpcarch/otlpbatch/obsreport"
	"github.com/grpcarch/otlpbatch/pdata/precord"
)

// Telemetry owns the exporters of a process. A signal whose exporter could
// not be built is disabled: recording on it is a no-op. All methods are safe
// on a nil *Telemetry.
type Telemetry struct {
	logger   *zap.Logger
	traces   *otlpexporter.TracesExporter
	logs     *otlpexporter.LogsExporter
	metrics  *otlpexporter.MetricsExporter
	requests *RequestMetrics
}

// New builds and starts the exporters described by cfg. Self-observability
// metrics are registered with reg when it is not nil. A failure to build one
// exporter is logged and only disables that signal.
func New(cfg *Config, logger *zap.Logger, reg prometheus.Registerer) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	selfMetrics, err := obsreport.New(reg)
	if err != nil {
		return nil, err
	}
	set := otlpexporter.Settings{Logger: logger, Metrics: selfMetrics}

	t := &Telemetry{logger: logger}
	if t.traces, err = otlpexporter.NewTracesExporter(cfg.Exporter, set); err != nil {
		logger.Warn("Traces exporter disabled", zap.Error(err))
	}
	if t.logs, err = otlpexporter.NewLogsExporter(cfg.Exporter, set); err != nil {
		logger.Warn("Logs exporter disabled", zap.Error(err))
	}
	if t.metrics, err = otlpexporter.NewMetricsExporter(cfg.Exporter, set); err != nil {
		logger.Warn("Metrics exporter disabled", zap.Error(err))
	} else {
		t.requests = NewRequestMetrics(cfg.metricPrefix(), cfg.RequestMetrics.Interval, t.metrics.ExportMetrics, logger)
		t.requests.Start()
	}

	logger.Info("Telemetry started",
		zap.String("endpoint", cfg.Exporter.Endpoint),
		zap.Bool("traces", t.traces != nil),
		zap.Bool("logs", t.logs != nil),
		zap.Bool("metrics", t.metrics != nil),
	)
	return t, nil
}

// RecordSpan queues span for export. The error only reports that the span
// was dropped.
func (t *Telemetry) RecordSpan(span precord.Span) error {
	if t == nil || t.traces == nil {
		return nil
	}
	return t.traces.ExportSpan(span)
}

// RecordLog queues entry for export. The error only reports that the entry
// was dropped.
func (t *Telemetry) RecordLog(entry precord.LogEntry) error {
	if t == nil || t.logs == nil {
		return nil
	}
	return t.logs.ExportLog(entry)
}

// RecordRequest adds one request to the request metrics.
func (t *Telemetry) RecordRequest(d time.Duration) {
	if t == nil || t.requests == nil {
		return
	}
	t.requests.Record(d)
}

// Flush sends the queued spans and log entries.
func (t *Telemetry) Flush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs error
	if t.traces != nil {
		errs = multierr.Append(errs, t.traces.Flush(ctx))
	}
	if t.logs != nil {
		errs = multierr.Append(errs, t.logs.Flush(ctx))
	}
	return errs
}

// Shutdown exports a final request metrics snapshot, drains the span and log
// queues and closes every connection.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs error
	if t.requests != nil {
		errs = multierr.Append(errs, t.requests.Shutdown(ctx))
	}
	if t.traces != nil {
		errs = multierr.Append(errs, t.traces.Shutdown(ctx))
	}
	if t.logs != nil {
		errs = multierr.Append(errs, t.logs.Shutdown(ctx))
	}
	if t.metrics != nil {
		errs = multierr.Append(errs, t.metrics.Shutdown(ctx))
	}
	t.logger.Info("Telemetry stopped")
	return errs
}

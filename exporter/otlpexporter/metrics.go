// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

import (
	"context"

	"github.com/grpcarch/otlpbatch/exporter/exporterhelper"
	"github.com/grpcarch/otlpbatch/pdata/precord"
)

// MetricsExporter sends metric snapshots to the collector's metrics service
// on the caller's goroutine. Callers are expected to aggregate per interval,
// so there is no queue.
type MetricsExporter struct {
	sync    *exporterhelper.SyncExporter[precord.Metric]
	encoder *encoder
	sender  *grpcSender
}

// NewMetricsExporter creates a MetricsExporter. Only the timeout part of the
// batch settings applies to it.
func NewMetricsExporter(cfg *Config, set Settings) (*MetricsExporter, error) {
	sender, hset, err := newSender(cfg, set, signalMetrics)
	if err != nil {
		return nil, err
	}
	me := &MetricsExporter{
		encoder: newEncoder(cfg.ServiceName, cfg.ServiceVersion),
		sender:  sender,
	}
	me.sync, err = exporterhelper.NewSyncExporter(hset, me.pushMetrics, helperOptions(cfg, sender)...)
	if err != nil {
		_ = sender.stop(context.Background())
		return nil, err
	}
	return me, nil
}

func (me *MetricsExporter) pushMetrics(ctx context.Context, metrics []precord.Metric) error {
	return me.sender.exportMetrics(ctx, me.encoder.encodeMetrics(metrics))
}

// ExportMetrics sends metrics in one request and blocks until the collector
// answers or the request times out. An empty slice sends nothing. metrics is
// only read during the call.
func (me *MetricsExporter) ExportMetrics(ctx context.Context, metrics []precord.Metric) error {
	return me.sync.Export(ctx, metrics)
}

// Shutdown closes the connection. ExportMetrics fails with
// exporterhelper.ErrStopped afterwards.
func (me *MetricsExporter) Shutdown(ctx context.Context) error {
	return me.sync.Shutdown(ctx)
}

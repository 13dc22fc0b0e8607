// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

import (
	"context"

	"github.com/grpcarch/otlpbatch/exporter/exporterhelper"
	"github.com/grpcarch/otlpbatch/pdata/precord"
)

// LogsExporter queues log entries and sends them in batches to the
// collector's logs service.
type LogsExporter struct {
	batcher *exporterhelper.BatchExporter[precord.LogEntry]
	encoder *encoder
	sender  *grpcSender
}

// NewLogsExporter creates a LogsExporter and starts its background flusher.
func NewLogsExporter(cfg *Config, set Settings) (*LogsExporter, error) {
	sender, hset, err := newSender(cfg, set, signalLogs)
	if err != nil {
		return nil, err
	}
	le := &LogsExporter{
		encoder: newEncoder(cfg.ServiceName, cfg.ServiceVersion),
		sender:  sender,
	}
	le.batcher, err = exporterhelper.NewBatchExporter(hset, le.pushLogs, helperOptions(cfg, sender)...)
	if err != nil {
		_ = sender.stop(context.Background())
		return nil, err
	}
	le.batcher.Start()
	return le, nil
}

func (le *LogsExporter) pushLogs(ctx context.Context, entries []precord.LogEntry) error {
	return le.sender.exportLogs(ctx, le.encoder.encodeLogs(entries))
}

// ExportLog copies entry into the pending queue. See
// TracesExporter.ExportSpan for the failure modes.
func (le *LogsExporter) ExportLog(entry precord.LogEntry) error {
	return le.batcher.Export(entry.Clone())
}

// Flush sends the queued log entries and waits for the result.
func (le *LogsExporter) Flush(ctx context.Context) error {
	return le.batcher.Flush(ctx)
}

// Shutdown sends the remaining log entries and closes the connection.
func (le *LogsExporter) Shutdown(ctx context.Context) error {
	return le.batcher.Shutdown(ctx)
}

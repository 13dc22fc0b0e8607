// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

import (
	"context"

	"github.com/grpcarch/otlpbatch/exporter/exporterhelper"
	"github.com/grpcarch/otlpbatch/pdata/precord"
)

// TracesExporter queues spans and sends them in batches to the collector's
// trace service.
type TracesExporter struct {
	batcher *exporterhelper.BatchExporter[precord.Span]
	encoder *encoder
	sender  *grpcSender
}

// NewTracesExporter creates a TracesExporter and starts its background
// flusher. Connectivity is not checked; an unreachable collector surfaces as
// failed flushes.
func NewTracesExporter(cfg *Config, set Settings) (*TracesExporter, error) {
	sender, hset, err := newSender(cfg, set, signalTraces)
	if err != nil {
		return nil, err
	}
	te := &TracesExporter{
		encoder: newEncoder(cfg.ServiceName, cfg.ServiceVersion),
		sender:  sender,
	}
	te.batcher, err = exporterhelper.NewBatchExporter(hset, te.pushSpans, helperOptions(cfg, sender)...)
	if err != nil {
		_ = sender.stop(context.Background())
		return nil, err
	}
	te.batcher.Start()
	return te, nil
}

func (te *TracesExporter) pushSpans(ctx context.Context, spans []precord.Span) error {
	return te.sender.exportTraces(ctx, te.encoder.encodeTraces(spans))
}

// ExportSpan copies span into the pending queue without waiting on the
// network. It fails with exporterhelper.ErrQueueFull when the queue is at
// capacity and exporterhelper.ErrStopped after Shutdown; the span is dropped
// in both cases.
func (te *TracesExporter) ExportSpan(span precord.Span) error {
	return te.batcher.Export(span.Clone())
}

// Flush sends the queued spans and waits for the collector's answer or the
// request timeout.
func (te *TracesExporter) Flush(ctx context.Context) error {
	return te.batcher.Flush(ctx)
}

// Shutdown sends the remaining spans and closes the connection. Calls after
// the first return nil.
func (te *TracesExporter) Shutdown(ctx context.Context) error {
	return te.batcher.Shutdown(ctx)
}

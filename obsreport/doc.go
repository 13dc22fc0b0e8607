// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package obsreport provides the self-observability signals of the
// exporters: how many records were sent, failed to send or were dropped at
// enqueue time, and the size of every batch.
//
// Exporters call the operations of their bound *Exporter:
//
//	* StartExportOp/EndExportOp around every export RPC.
//
//	* RecordEnqueueFailure when a record is refused by the pending queue.
//
// The counters are Prometheus collectors registered once per registry; each
// signal (traces, logs, metrics) gets its own label value.
package obsreport // import "github.com/grpcarch/otlpbatch/obsreport"

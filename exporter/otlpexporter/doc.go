// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package otlpexporter exports spans, log entries and metrics to an OTLP/gRPC
// collector. Spans and log entries are queued and sent in batches by a
// background flusher; metrics are sent synchronously by the caller.
package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

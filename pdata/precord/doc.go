// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package precord contains the in-memory telemetry records handed to the
// batching exporters: spans, log entries and metrics.
package precord // import "github.com/grpcarch/otlpbatch/pdata/precord"

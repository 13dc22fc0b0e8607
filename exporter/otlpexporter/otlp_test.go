// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/grpcarch/otlpbatch/exporter/exporterhelper"
	"github.com/grpcarch/otlpbatch/internal/testutil"
	"github.com/grpcarch/otlpbatch/internal/testutil/collectortest"
	"github.com/grpcarch/otlpbatch/obsreport"
	"github.com/grpcarch/otlpbatch/pdata/precord"
)

// newTestConfig points at endpoint and disables the background flush so
// that tests decide when batches leave.
func newTestConfig(endpoint string) *Config {
	cfg := NewDefaultConfig()
	cfg.Endpoint = endpoint
	cfg.ServiceName = "service-f"
	cfg.ServiceVersion = "1.0.0"
	cfg.FlushInterval = time.Hour
	return cfg
}

func newTestTracesExporter(t *testing.T, cfg *Config, set Settings) *TracesExporter {
	exp, err := NewTracesExporter(cfg, set)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, exp.Shutdown(context.Background()))
	})
	return exp
}

func testSpan(name string) precord.Span {
	return precord.Span{
		TraceID:           testTraceID,
		SpanID:            testSpanID,
		Name:              name,
		Kind:              precord.SpanKindServer,
		StartTimeUnixNano: 1000,
		EndTimeUnixNano:   2000,
		Status:            precord.StatusCodeOk,
	}
}

func TestSendTraces(t *testing.T) {
	rcv := collectortest.Start(t)
	cfg := newTestConfig(rcv.Endpoint)
	cfg.Headers = map[string]string{"x-scope": "tenant-1"}
	exp := newTestTracesExporter(t, cfg, Settings{Logger: zap.NewNop()})

	// Nothing queued, nothing sent.
	require.NoError(t, exp.Flush(context.Background()))
	assert.Equal(t, 0, rcv.Traces.RequestCount())

	require.NoError(t, exp.ExportSpan(testSpan("o1")))
	require.NoError(t, exp.ExportSpan(testSpan("o2")))
	require.NoError(t, exp.ExportSpan(testSpan("o3")))
	require.NoError(t, exp.Flush(context.Background()))

	reqs := rcv.Traces.Requests()
	require.Len(t, reqs, 1)
	spans := reqs[0].GetResourceSpans()[0].GetScopeSpans()[0].GetSpans()
	require.Len(t, spans, 3)
	for i, name := range []string{"o1", "o2", "o3"} {
		assert.Equal(t, name, spans[i].GetName())
	}
	assert.Equal(t, mustDecodeHex(t, testTraceID), spans[0].GetTraceId())

	md := rcv.Traces.Headers()[0]
	assert.Equal(t, []string{"tenant-1"}, md.Get("x-scope"))
	require.NotEmpty(t, md.Get("user-agent"))
	assert.Contains(t, md.Get("user-agent")[0], "otlpbatch/")
}

func TestExportSpanCopiesAttributes(t *testing.T) {
	rcv := collectortest.Start(t)
	exp := newTestTracesExporter(t, newTestConfig(rcv.Endpoint), Settings{})

	span := testSpan("op")
	span.Attributes = []precord.Attribute{precord.Attr("k", "before")}
	require.NoError(t, exp.ExportSpan(span))
	span.Attributes[0].Value = "after"
	require.NoError(t, exp.Flush(context.Background()))

	spans := rcv.Traces.Requests()[0].GetResourceSpans()[0].GetScopeSpans()[0].GetSpans()
	assert.Equal(t, "before", spans[0].GetAttributes()[0].GetValue().GetStringValue())
}

func TestSendTracesQueueOverflow(t *testing.T) {
	rcv := collectortest.Start(t)
	reg := prometheus.NewRegistry()
	metrics, err := obsreport.New(reg)
	require.NoError(t, err)
	exp := newTestTracesExporter(t, newTestConfig(rcv.Endpoint), Settings{Metrics: metrics})

	dropped := 0
	for i := 0; i < 65; i++ {
		if err := exp.ExportSpan(testSpan("op")); err != nil {
			assert.ErrorIs(t, err, exporterhelper.ErrQueueFull)
			dropped++
		}
	}
	assert.Equal(t, 1, dropped)

	require.NoError(t, exp.Flush(context.Background()))
	assert.Equal(t, 64, rcv.Traces.SpanCount())
	assert.InDelta(t, 64, counterValue(t, reg, "otlpbatch_exporter_sent_items_total"), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "otlpbatch_exporter_enqueue_failed_items_total"), 0)
}

func TestSendTracesBackgroundFlush(t *testing.T) {
	rcv := collectortest.Start(t)
	cfg := newTestConfig(rcv.Endpoint)
	cfg.FlushInterval = 20 * time.Millisecond
	exp := newTestTracesExporter(t, cfg, Settings{})

	require.NoError(t, exp.ExportSpan(testSpan("op")))
	assert.Eventually(t, func() bool {
		return rcv.Traces.SpanCount() == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestShutdownFlushesRemainingSpans(t *testing.T) {
	rcv := collectortest.Start(t)
	exp, err := NewTracesExporter(newTestConfig(rcv.Endpoint), Settings{})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, exp.ExportSpan(testSpan("op")))
	}
	require.NoError(t, exp.Shutdown(context.Background()))
	assert.Equal(t, 1, rcv.Traces.RequestCount())
	assert.Equal(t, 5, rcv.Traces.SpanCount())

	assert.ErrorIs(t, exp.ExportSpan(testSpan("late")), exporterhelper.ErrStopped)
	require.NoError(t, exp.Shutdown(context.Background()))
	assert.Equal(t, 5, rcv.Traces.SpanCount())
}

func TestSendTracesUnreachableCollector(t *testing.T) {
	// Nothing listens on this address once the helper returns.
	cfg := newTestConfig(testutil.GetAvailableLocalAddress(t))
	core, logs := observer.New(zap.ErrorLevel)
	exp := newTestTracesExporter(t, cfg, Settings{Logger: zap.New(core)})

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, exp.ExportSpan(testSpan("op")))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	err := exp.Flush(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), cfg.Timeout+time.Second)
	assert.False(t, IsPermanent(err))

	entries := logs.FilterMessage("Exporting failed. Dropping data.").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(10), entries[0].ContextMap()["dropped_items"])
	assert.Equal(t, "traces", entries[0].ContextMap()["signal"])

	// The exporter stays usable after a failed flush.
	require.NoError(t, exp.ExportSpan(testSpan("op")))
	require.Error(t, exp.Flush(context.Background()))
	assert.Equal(t, 0, exp.batcher.QueueSize())
}

func TestSendTracesStalledCollector(t *testing.T) {
	rcv := collectortest.Start(t)
	rcv.Traces.SetStall(true)
	cfg := newTestConfig(rcv.Endpoint)
	cfg.Timeout = 200 * time.Millisecond
	exp := newTestTracesExporter(t, cfg, Settings{})

	require.NoError(t, exp.ExportSpan(testSpan("op")))
	start := time.Now()
	err := exp.Flush(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	assert.False(t, IsPermanent(err))
	assert.GreaterOrEqual(t, elapsed, cfg.Timeout)
	assert.Less(t, elapsed, cfg.Timeout+time.Second)
	assert.Equal(t, 1, rcv.Traces.RequestCount())
	assert.Equal(t, 0, rcv.Traces.SpanCount())
}

func TestSendTracesIPv6Endpoint(t *testing.T) {
	if ln, err := net.Listen("tcp", "[::1]:0"); err != nil {
		t.Skip("IPv6 loopback is not available")
	} else {
		require.NoError(t, ln.Close())
	}
	addr := testutil.GetAvailableLocalIPv6Address(t)
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	rcv := collectortest.StartOnListener(t, ln)

	exp := newTestTracesExporter(t, newTestConfig("http://"+addr), Settings{})
	require.NoError(t, exp.ExportSpan(testSpan("op")))
	require.NoError(t, exp.Flush(context.Background()))
	assert.Equal(t, 1, rcv.Traces.SpanCount())
}

func TestSendTracesRejected(t *testing.T) {
	rcv := collectortest.Start(t)
	rcv.Traces.SetExportError(status.Error(codes.InvalidArgument, "bad request"))
	exp := newTestTracesExporter(t, newTestConfig(rcv.Endpoint), Settings{})

	require.NoError(t, exp.ExportSpan(testSpan("op")))
	err := exp.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))

	// The failed batch is gone; the next flush only carries new spans.
	rcv.Traces.SetExportError(nil)
	require.NoError(t, exp.ExportSpan(testSpan("next")))
	require.NoError(t, exp.Flush(context.Background()))
	assert.Equal(t, 2, rcv.Traces.RequestCount())
	assert.Equal(t, 1, rcv.Traces.SpanCount())
}

func TestSendTracesThrottled(t *testing.T) {
	rcv := collectortest.Start(t)
	st, err := status.New(codes.Unavailable, "slow down").WithDetails(&errdetails.RetryInfo{
		RetryDelay: durationpb.New(2 * time.Second),
	})
	require.NoError(t, err)
	rcv.Traces.SetExportError(st.Err())
	exp := newTestTracesExporter(t, newTestConfig(rcv.Endpoint), Settings{})

	require.NoError(t, exp.ExportSpan(testSpan("op")))
	err = exp.Flush(context.Background())
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
	assert.Equal(t, 2*time.Second, ThrottleDelay(err))
}

func TestSendTracesPartialSuccess(t *testing.T) {
	rcv := collectortest.Start(t)
	rcv.Traces.PartialSuccess = &coltracepb.ExportTracePartialSuccess{
		RejectedSpans: 1,
		ErrorMessage:  "span too large",
	}
	core, logs := observer.New(zap.WarnLevel)
	exp := newTestTracesExporter(t, newTestConfig(rcv.Endpoint), Settings{Logger: zap.New(core)})

	require.NoError(t, exp.ExportSpan(testSpan("op")))
	require.NoError(t, exp.Flush(context.Background()))

	entries := logs.FilterMessage("partial success").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "span too large", entries[0].ContextMap()["message"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["num_rejected"])
}

func TestSendTracesGzip(t *testing.T) {
	rcv := collectortest.Start(t)
	cfg := newTestConfig(rcv.Endpoint)
	cfg.Compression = "gzip"
	exp := newTestTracesExporter(t, cfg, Settings{})

	require.NoError(t, exp.ExportSpan(testSpan("op")))
	require.NoError(t, exp.Flush(context.Background()))
	assert.Equal(t, 1, rcv.Traces.SpanCount())
}

func TestSendLogs(t *testing.T) {
	rcv := collectortest.Start(t)
	exp, err := NewLogsExporter(newTestConfig("http://"+rcv.Endpoint), Settings{})
	require.NoError(t, err)

	require.NoError(t, exp.ExportLog(precord.LogEntry{Severity: precord.SeverityError, Body: "boom"}))
	require.NoError(t, exp.ExportLog(precord.LogEntry{TraceID: testTraceID, SpanID: testSpanID, Severity: precord.SeverityInfo, Body: "ok"}))
	require.NoError(t, exp.Flush(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	reqs := rcv.Logs.Requests()
	require.Len(t, reqs, 1)
	records := reqs[0].GetResourceLogs()[0].GetScopeLogs()[0].GetLogRecords()
	require.Len(t, records, 2)
	assert.Equal(t, "ERROR", records[0].GetSeverityText())
	assert.Equal(t, make([]byte, 16), records[0].GetTraceId())
	assert.Equal(t, make([]byte, 8), records[0].GetSpanId())
	assert.Equal(t, "ok", records[1].GetBody().GetStringValue())

	assert.ErrorIs(t, exp.ExportLog(precord.LogEntry{}), exporterhelper.ErrStopped)
}

func TestSendMetrics(t *testing.T) {
	rcv := collectortest.Start(t)
	rcv.Metrics.PartialSuccess = &colmetricspb.ExportMetricsPartialSuccess{}
	exp, err := NewMetricsExporter(newTestConfig(rcv.Endpoint), Settings{})
	require.NoError(t, err)

	require.NoError(t, exp.ExportMetrics(context.Background(), nil))
	assert.Equal(t, 0, rcv.Metrics.RequestCount())

	metrics := []precord.Metric{
		{Name: "requests_total", Kind: precord.MetricKindCounter, DataPoints: []precord.NumberDataPoint{precord.IntPoint(1, 3)}},
		{Name: "request_duration_ms", Kind: precord.MetricKindGauge, DataPoints: []precord.NumberDataPoint{precord.DoublePoint(1, 2.5)}},
	}
	require.NoError(t, exp.ExportMetrics(context.Background(), metrics))
	assert.Equal(t, 1, rcv.Metrics.RequestCount())
	assert.Equal(t, 2, rcv.Metrics.MetricCount())

	rcv.Metrics.SetExportError(status.Error(codes.Unavailable, "down"))
	assert.Error(t, exp.ExportMetrics(context.Background(), metrics))

	require.NoError(t, exp.Shutdown(context.Background()))
	assert.ErrorIs(t, exp.ExportMetrics(context.Background(), metrics), exporterhelper.ErrStopped)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestNewExportersInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	_, err := NewTracesExporter(cfg, Settings{})
	assert.ErrorContains(t, err, "invalid traces exporter config")
	_, err = NewLogsExporter(cfg, Settings{})
	assert.ErrorContains(t, err, "invalid logs exporter config")
	_, err = NewMetricsExporter(cfg, Settings{})
	assert.ErrorContains(t, err, "invalid metrics exporter config")
}

func TestProcessError(t *testing.T) {
	assert.NoError(t, processError(nil))
	assert.NoError(t, processError(status.Error(codes.OK, "")))

	err := processError(status.Error(codes.PermissionDenied, "nope"))
	assert.True(t, IsPermanent(err))
	assert.Zero(t, ThrottleDelay(err))

	err = processError(status.Error(codes.Unavailable, "later"))
	assert.False(t, IsPermanent(err))
	assert.Zero(t, ThrottleDelay(err))

	// Resource exhaustion is only transient when the server says when to come back.
	assert.True(t, IsPermanent(processError(status.Error(codes.ResourceExhausted, "full"))))
	st, err := status.New(codes.ResourceExhausted, "full").WithDetails(&errdetails.RetryInfo{
		RetryDelay: durationpb.New(500 * time.Millisecond),
	})
	require.NoError(t, err)
	err = processError(st.Err())
	assert.False(t, IsPermanent(err))
	assert.Equal(t, 500*time.Millisecond, ThrottleDelay(err))

	assert.False(t, IsPermanent(nil))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

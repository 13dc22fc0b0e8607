// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package collectortest runs an in-process OTLP/gRPC collector that records
// every request it receives.
package collectortest // import "github.com/grpcarch/otlpbatch/internal/testutil/collectortest"

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip" // register gzip for compressed requests
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Collector serves the trace, logs and metrics OTLP services on a loopback
// listener.
type Collector struct {
	// Endpoint is the host:port the collector listens on.
	Endpoint string

	Traces  *TraceService
	Logs    *LogsService
	Metrics *MetricsService

	srv *grpc.Server
	ln  net.Listener
	wg  sync.WaitGroup
}

// Start runs a Collector on an ephemeral local port. It is stopped when the
// test ends.
func Start(tb testing.TB) *Collector {
	ln, err := net.Listen("tcp", "localhost:")
	require.NoError(tb, err, "Failed to find an available address to run the gRPC server")
	return StartOnListener(tb, ln)
}

// StartOnListener runs a Collector on ln. It is stopped when the test ends.
func StartOnListener(tb testing.TB, ln net.Listener) *Collector {
	c := &Collector{
		Endpoint: ln.Addr().String(),
		Traces:   &TraceService{},
		Logs:     &LogsService{},
		Metrics:  &MetricsService{},
		srv:      grpc.NewServer(),
		ln:       ln,
	}
	coltracepb.RegisterTraceServiceServer(c.srv, c.Traces)
	collogspb.RegisterLogsServiceServer(c.srv, c.Logs)
	colmetricspb.RegisterMetricsServiceServer(c.srv, c.Metrics)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.srv.Serve(ln)
	}()
	tb.Cleanup(c.Stop)
	return c
}

// Stop closes the listener and every open connection. It is safe to call
// more than once.
func (c *Collector) Stop() {
	c.srv.Stop()
	c.wg.Wait()
}

// recorder keeps the requests of one service, in arrival order.
type recorder[Req any] struct {
	mu           sync.Mutex
	requests     []Req
	headers      []metadata.MD
	err          error
	requestCount atomic.Int32
	stall        atomic.Bool
}

func (r *recorder[Req]) record(ctx context.Context, req Req) error {
	r.requestCount.Inc()
	if r.stall.Load() {
		<-ctx.Done()
		return status.FromContextError(ctx.Err()).Err()
	}
	md, _ := metadata.FromIncomingContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.headers = append(r.headers, md)
	if r.err != nil {
		return r.err
	}
	r.requests = append(r.requests, req)
	return nil
}

// SetExportError makes every following Export call fail with err; a nil err
// restores success. Failed requests are counted but not recorded.
func (r *recorder[Req]) SetExportError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// SetStall makes every following Export call wait until its context is
// done without answering, as a collector that accepted the connection but
// hangs. Stalled requests are counted but not recorded.
func (r *recorder[Req]) SetStall(stall bool) {
	r.stall.Store(stall)
}

// Requests returns the successfully received requests.
func (r *recorder[Req]) Requests() []Req {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Req(nil), r.requests...)
}

// Headers returns the incoming metadata of every call, failed ones included.
func (r *recorder[Req]) Headers() []metadata.MD {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]metadata.MD(nil), r.headers...)
}

// RequestCount returns the number of Export calls received.
func (r *recorder[Req]) RequestCount() int {
	return int(r.requestCount.Load())
}

// TraceService records trace export requests.
type TraceService struct {
	coltracepb.UnimplementedTraceServiceServer
	recorder[*coltracepb.ExportTraceServiceRequest]

	// PartialSuccess, when set, is returned with every successful response.
	PartialSuccess *coltracepb.ExportTracePartialSuccess
}

// Export implements coltracepb.TraceServiceServer.
func (s *TraceService) Export(ctx context.Context, req *coltracepb.ExportTraceServiceRequest) (*coltracepb.ExportTraceServiceResponse, error) {
	if err := s.record(ctx, req); err != nil {
		return nil, err
	}
	return &coltracepb.ExportTraceServiceResponse{PartialSuccess: s.PartialSuccess}, nil
}

// SpanCount returns the number of spans across all recorded requests.
func (s *TraceService) SpanCount() int {
	n := 0
	for _, req := range s.Requests() {
		for _, rs := range req.GetResourceSpans() {
			for _, ss := range rs.GetScopeSpans() {
				n += len(ss.GetSpans())
			}
		}
	}
	return n
}

// LogsService records logs export requests.
type LogsService struct {
	collogspb.UnimplementedLogsServiceServer
	recorder[*collogspb.ExportLogsServiceRequest]

	// PartialSuccess, when set, is returned with every successful response.
	PartialSuccess *collogspb.ExportLogsPartialSuccess
}

// Export implements collogspb.LogsServiceServer.
func (s *LogsService) Export(ctx context.Context, req *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	if err := s.record(ctx, req); err != nil {
		return nil, err
	}
	return &collogspb.ExportLogsServiceResponse{PartialSuccess: s.PartialSuccess}, nil
}

// LogRecordCount returns the number of log records across all recorded
// requests.
func (s *LogsService) LogRecordCount() int {
	n := 0
	for _, req := range s.Requests() {
		for _, rl := range req.GetResourceLogs() {
			for _, sl := range rl.GetScopeLogs() {
				n += len(sl.GetLogRecords())
			}
		}
	}
	return n
}

// MetricsService records metrics export requests.
type MetricsService struct {
	colmetricspb.UnimplementedMetricsServiceServer
	recorder[*colmetricspb.ExportMetricsServiceRequest]

	// PartialSuccess, when set, is returned with every successful response.
	PartialSuccess *colmetricspb.ExportMetricsPartialSuccess
}

// Export implements colmetricspb.MetricsServiceServer.
func (s *MetricsService) Export(ctx context.Context, req *colmetricspb.ExportMetricsServiceRequest) (*colmetricspb.ExportMetricsServiceResponse, error) {
	if err := s.record(ctx, req); err != nil {
		return nil, err
	}
	return &colmetricspb.ExportMetricsServiceResponse{PartialSuccess: s.PartialSuccess}, nil
}

// MetricCount returns the number of metrics across all recorded requests.
func (s *MetricsService) MetricCount() int {
	n := 0
	for _, req := range s.Requests() {
		for _, rm := range req.GetResourceMetrics() {
			for _, sm := range rm.GetScopeMetrics() {
				n += len(sm.GetMetrics())
			}
		}
	}
	return n
}

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/grpcarch/otlpbatch/internal/version"
)

// grpcSender issues OTLP export calls over one long-lived client connection.
// Each call is a single unary RPC; a failed call is reported, never retried.
type grpcSender struct {
	logger *zap.Logger

	// gRPC clients and connection.
	traceExporter  coltracepb.TraceServiceClient
	metricExporter colmetricspb.MetricsServiceClient
	logExporter    collogspb.LogsServiceClient
	clientConn     *grpc.ClientConn
	metadata       metadata.MD
	callOptions    []grpc.CallOption
}

// newGrpcSender creates the client connection. No connection is attempted
// until the first export.
func newGrpcSender(cfg *Config, logger *zap.Logger, extra ...grpc.DialOption) (*grpcSender, error) {
	opts := append([]grpc.DialOption{grpc.WithUserAgent(version.UserAgent())}, extra...)
	clientConn, err := cfg.ClientSettings.ToClientConn(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %q: %w", cfg.Endpoint, err)
	}

	return &grpcSender{
		logger:         logger,
		traceExporter:  coltracepb.NewTraceServiceClient(clientConn),
		metricExporter: colmetricspb.NewMetricsServiceClient(clientConn),
		logExporter:    collogspb.NewLogsServiceClient(clientConn),
		clientConn:     clientConn,
		metadata:       metadata.New(cfg.Headers),
		callOptions:    cfg.ClientSettings.ToCallOptions(),
	}, nil
}

func (gs *grpcSender) stop(context.Context) error {
	return gs.clientConn.Close()
}

func (gs *grpcSender) exportTraces(ctx context.Context, req *coltracepb.ExportTraceServiceRequest) error {
	gs.logRequest("traces", req)
	resp, err := gs.traceExporter.Export(gs.enhanceContext(ctx), req, gs.callOptions...)
	if err = processError(err); err != nil {
		return err
	}
	partialSuccess := resp.GetPartialSuccess()
	if partialSuccess.GetErrorMessage() != "" || partialSuccess.GetRejectedSpans() != 0 {
		gs.logger.Warn("partial success",
			zap.String("message", partialSuccess.GetErrorMessage()),
			zap.Int64("num_rejected", partialSuccess.GetRejectedSpans()),
		)
	}
	return nil
}

func (gs *grpcSender) exportLogs(ctx context.Context, req *collogspb.ExportLogsServiceRequest) error {
	gs.logRequest("logs", req)
	resp, err := gs.logExporter.Export(gs.enhanceContext(ctx), req, gs.callOptions...)
	if err = processError(err); err != nil {
		return err
	}
	partialSuccess := resp.GetPartialSuccess()
	if partialSuccess.GetErrorMessage() != "" || partialSuccess.GetRejectedLogRecords() != 0 {
		gs.logger.Warn("partial success",
			zap.String("message", partialSuccess.GetErrorMessage()),
			zap.Int64("num_rejected", partialSuccess.GetRejectedLogRecords()),
		)
	}
	return nil
}

func (gs *grpcSender) exportMetrics(ctx context.Context, req *colmetricspb.ExportMetricsServiceRequest) error {
	gs.logRequest("metrics", req)
	resp, err := gs.metricExporter.Export(gs.enhanceContext(ctx), req, gs.callOptions...)
	if err = processError(err); err != nil {
		return err
	}
	partialSuccess := resp.GetPartialSuccess()
	if partialSuccess.GetErrorMessage() != "" || partialSuccess.GetRejectedDataPoints() != 0 {
		gs.logger.Warn("partial success",
			zap.String("message", partialSuccess.GetErrorMessage()),
			zap.Int64("num_rejected", partialSuccess.GetRejectedDataPoints()),
		)
	}
	return nil
}

func (gs *grpcSender) logRequest(signal string, req proto.Message) {
	if ce := gs.logger.Check(zap.DebugLevel, "Sending export request"); ce != nil {
		ce.Write(zap.String("signal", signal), zap.Int("size_bytes", proto.Size(req)))
	}
}

func (gs *grpcSender) enhanceContext(ctx context.Context) context.Context {
	if gs.metadata.Len() > 0 {
		return metadata.NewOutgoingContext(ctx, gs.metadata)
	}
	return ctx
}

// permanentError marks a rejection the collector will repeat for the same
// request.
type permanentError struct {
	err error
}

func (p permanentError) Error() string {
	return "Permanent error: " + p.err.Error()
}

func (p permanentError) Unwrap() error {
	return p.err
}

// IsPermanent reports whether err is an export failure that would fail again
// if the same batch were sent later.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	return errors.As(err, &permanentError{})
}

// throttleError carries the delay a collector asked for before the next
// request.
type throttleError struct {
	err   error
	delay time.Duration
}

func (t throttleError) Error() string {
	return "Throttle (" + t.delay.String() + "), error: " + t.err.Error()
}

func (t throttleError) Unwrap() error {
	return t.err
}

// ThrottleDelay returns the back-off requested by the collector with a
// failed export, or 0 when it gave none.
func ThrottleDelay(err error) time.Duration {
	var te throttleError
	if errors.As(err, &te) {
		return te.delay
	}
	return 0
}

func processError(err error) error {
	if err == nil {
		// Request is successful, we are done.
		return nil
	}

	// We have an error, check gRPC status code.
	st := status.Convert(err)
	if st.Code() == codes.OK {
		// Not really an error, still success.
		return nil
	}

	retryInfo := getRetryInfo(st)

	if !shouldRetry(st.Code(), retryInfo) {
		return permanentError{err: err}
	}

	// Check if server returned throttling information.
	if throttleDuration := getThrottleDuration(retryInfo); throttleDuration != 0 {
		return throttleError{err: err, delay: throttleDuration}
	}

	return err
}

func shouldRetry(code codes.Code, retryInfo *errdetails.RetryInfo) bool {
	switch code {
	case codes.Canceled,
		codes.DeadlineExceeded,
		codes.Aborted,
		codes.OutOfRange,
		codes.Unavailable,
		codes.DataLoss:
		// These are retryable errors.
		return true
	case codes.ResourceExhausted:
		// Retry only if RetryInfo was supplied by the server.
		// This indicates that the server can still recover from resource exhaustion.
		return retryInfo != nil
	}
	// Don't retry on any other code.
	return false
}

func getRetryInfo(status *status.Status) *errdetails.RetryInfo {
	for _, detail := range status.Details() {
		if t, ok := detail.(*errdetails.RetryInfo); ok {
			return t
		}
	}
	return nil
}

func getThrottleDuration(t *errdetails.RetryInfo) time.Duration {
	if t == nil || t.RetryDelay == nil {
		return 0
	}
	if t.RetryDelay.Seconds > 0 || t.RetryDelay.Nanos > 0 {
		return time.Duration(t.RetryDelay.Seconds)*time.Second + time.Duration(t.RetryDelay.Nanos)*time.Nanosecond
	}
	return 0
}

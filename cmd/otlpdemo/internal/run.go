// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/grpcarch/otlpbatch/cmd/otlpdemo/internal"

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/grpcarch/otlpbatch/pdata/precord"
	"github.com/grpcarch/otlpbatch/service"
	"github.com/grpcarch/otlpbatch/service/telemetry"
)

const shutdownTimeout = 10 * time.Second

func run(ctx context.Context, cfg *service.Config, opts *options) error {
	logger, err := telemetry.NewLogger(cfg.Logs)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	tel, err := service.New(cfg, logger, reg)
	if err != nil {
		return err
	}

	var srv *http.Server
	if opts.metricsAddr != "" {
		srv = &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(serveErr))
			}
		}()
	}

	sim := &simulator{tel: tel, logger: logger}
	handled := sim.serve(ctx, opts.requests, opts.requestDelay)
	logger.Info("Simulation finished", zap.Int("requests", handled))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}
	return tel.Shutdown(shutdownCtx)
}

// simulator stands in for a request handler that reports its telemetry.
type simulator struct {
	tel    *service.Telemetry
	logger *zap.Logger
}

// serve handles n requests, pausing delay between two of them, and returns
// how many were handled before ctx was done.
func (s *simulator) serve(ctx context.Context, n int, delay time.Duration) int {
	for i := 0; i < n; i++ {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return i
			case <-time.After(delay):
			}
		} else if ctx.Err() != nil {
			return i
		}
		s.handle(i)
	}
	return n
}

func (s *simulator) handle(seq int) {
	start := time.Now()
	traceID := newTraceID()
	spanID := newSpanID()
	route := precord.Attr("http.route", "/demo")

	if err := s.tel.RecordLog(precord.LogEntry{
		TraceID:      traceID,
		SpanID:       spanID,
		Severity:     precord.SeverityInfo,
		Body:         "handled request " + strconv.Itoa(seq),
		TimeUnixNano: uint64(time.Now().UnixNano()),
		Attributes:   []precord.Attribute{route},
	}); err != nil {
		s.logger.Debug("Log entry dropped", zap.Error(err))
	}

	end := time.Now()
	if err := s.tel.RecordSpan(precord.Span{
		TraceID:           traceID,
		SpanID:            spanID,
		Name:              "GET /demo",
		Kind:              precord.SpanKindServer,
		StartTimeUnixNano: uint64(start.UnixNano()),
		EndTimeUnixNano:   uint64(end.UnixNano()),
		Status:            precord.StatusCodeOk,
		Attributes: []precord.Attribute{
			precord.Attr("http.method", "GET"),
			route,
			precord.Attr("request.seq", strconv.Itoa(seq)),
		},
	}); err != nil {
		s.logger.Debug("Span dropped", zap.Error(err))
	}
	s.tel.RecordRequest(end.Sub(start))
}

func newTraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func newSpanID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:8])
}

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package service // import "github.com/grpcarch/otlpbatch/service"

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grpcarch/otlpbatch/pdata/precord"
)

// durationBounds are the upper bounds, in milliseconds, of the request
// duration histogram buckets.
var durationBounds = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// MetricsExportFunc sends one metrics snapshot.
type MetricsExportFunc func(ctx context.Context, metrics []precord.Metric) error

// RequestMetrics aggregates request counts and durations and exports a
// cumulative snapshot on every tick.
type RequestMetrics struct {
	logger   *zap.Logger
	prefix   string
	interval time.Duration
	export   MetricsExportFunc
	now      func() time.Time

	mu           sync.Mutex
	start        time.Time
	count        uint64
	totalMs      float64
	bucketCounts []uint64

	startOnce  sync.Once
	stopOnce   sync.Once
	shutdownC  chan struct{}
	goroutines sync.WaitGroup
}

// NewRequestMetrics creates an aggregator whose metric names start with
// prefix. Call Start to begin periodic exports.
func NewRequestMetrics(prefix string, interval time.Duration, export MetricsExportFunc, logger *zap.Logger) *RequestMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestMetrics{
		logger:       logger,
		prefix:       prefix,
		interval:     interval,
		export:       export,
		now:          time.Now,
		start:        time.Now(),
		bucketCounts: make([]uint64, len(durationBounds)+1),
		shutdownC:    make(chan struct{}),
	}
}

// Record adds one request that took d.
func (rm *RequestMetrics) Record(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	idx := sort.SearchFloat64s(durationBounds, ms)

	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.count++
	rm.totalMs += ms
	rm.bucketCounts[idx]++
}

// Snapshot returns the metrics accumulated since creation, or nil if no
// request was recorded yet.
func (rm *RequestMetrics) Snapshot() []precord.Metric {
	now := uint64(rm.now().UnixNano())

	rm.mu.Lock()
	count, totalMs := rm.count, rm.totalMs
	buckets := append([]uint64(nil), rm.bucketCounts...)
	start := uint64(rm.start.UnixNano())
	rm.mu.Unlock()

	if count == 0 {
		return nil
	}

	counter := precord.IntPoint(now, int64(count))
	counter.StartTimeUnixNano = start
	return []precord.Metric{
		{
			Name:        rm.prefix + "_requests_total",
			Description: "Total number of requests",
			Unit:        "1",
			Kind:        precord.MetricKindCounter,
			DataPoints:  []precord.NumberDataPoint{counter},
		},
		{
			Name:        rm.prefix + "_request_duration_ms",
			Description: "Average request duration in milliseconds",
			Unit:        "ms",
			Kind:        precord.MetricKindGauge,
			DataPoints:  []precord.NumberDataPoint{precord.DoublePoint(now, totalMs/float64(count))},
		},
		{
			Name:        rm.prefix + "_request_duration_ms_histogram",
			Description: "Distribution of request durations in milliseconds",
			Unit:        "ms",
			Kind:        precord.MetricKindHistogram,
			HistogramPoints: []precord.HistogramDataPoint{{
				StartTimeUnixNano: start,
				TimeUnixNano:      now,
				Count:             count,
				Sum:               totalMs,
				ExplicitBounds:    append([]float64(nil), durationBounds...),
				BucketCounts:      buckets,
			}},
		},
	}
}

// Export sends the current snapshot. It does nothing until a request has
// been recorded.
func (rm *RequestMetrics) Export(ctx context.Context) error {
	metrics := rm.Snapshot()
	if metrics == nil {
		return nil
	}
	return rm.export(ctx, metrics)
}

// Start launches the periodic export goroutine.
func (rm *RequestMetrics) Start() {
	rm.startOnce.Do(func() {
		rm.goroutines.Add(1)
		go func() {
			defer rm.goroutines.Done()
			ticker := time.NewTicker(rm.interval)
			defer ticker.Stop()
			for {
				select {
				case <-rm.shutdownC:
					return
				case <-ticker.C:
					if err := rm.Export(context.Background()); err != nil {
						rm.logger.Debug("Request metrics export failed", zap.Error(err))
					}
				}
			}
		}()
	})
}

// Shutdown stops the periodic export and sends one final snapshot. Calls
// after the first return nil.
func (rm *RequestMetrics) Shutdown(ctx context.Context) error {
	var err error
	rm.stopOnce.Do(func() {
		close(rm.shutdownC)
		rm.goroutines.Wait()
		err = rm.Export(ctx)
	})
	return err
}

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package obsreport // import "github.com/grpcarch/otlpbatch/obsreport"

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "otlpbatch"
	subsystem = "exporter"

	// SignalKey labels every exporter metric with the telemetry signal.
	SignalKey = "signal"
	// ReasonKey labels enqueue failures with their cause.
	ReasonKey = "reason"

	// SentItemsKey tracks records successfully sent to the collector.
	SentItemsKey = "sent_items_total"
	// FailedToSendItemsKey tracks records in failed export attempts.
	FailedToSendItemsKey = "send_failed_items_total"
	// EnqueueFailedItemsKey tracks records refused by the pending queue.
	EnqueueFailedItemsKey = "enqueue_failed_items_total"
	// BatchSendSizeKey tracks the number of records per export request.
	BatchSendSizeKey = "batch_send_size"
	// ExportDurationKey tracks the latency of export requests.
	ExportDurationKey = "export_duration_seconds"
)

// Metrics holds the exporter collectors shared by all signals.
type Metrics struct {
	sentItems          *prometheus.CounterVec
	failedItems        *prometheus.CounterVec
	enqueueFailedItems *prometheus.CounterVec
	batchSendSize      *prometheus.HistogramVec
	exportDuration     *prometheus.HistogramVec
}

// New creates the exporter collectors and registers them with reg. A nil
// reg leaves them unregistered, which keeps them usable in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sentItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      SentItemsKey,
			Help:      "Number of records successfully sent to destination.",
		}, []string{SignalKey}),
		failedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      FailedToSendItemsKey,
			Help:      "Number of records in failed attempts to send to destination.",
		}, []string{SignalKey}),
		enqueueFailedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      EnqueueFailedItemsKey,
			Help:      "Number of records dropped before reaching the pending queue.",
		}, []string{SignalKey, ReasonKey}),
		batchSendSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      BatchSendSizeKey,
			Help:      "Number of records in each export request.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}, []string{SignalKey}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      ExportDurationKey,
			Help:      "Latency of export requests to the collector.",
			Buckets:   prometheus.DefBuckets,
		}, []string{SignalKey}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.sentItems, m.failedItems, m.enqueueFailedItems, m.batchSendSize, m.exportDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Exporter returns the operations bound to one signal.
func (m *Metrics) Exporter(signal string) *Exporter {
	labels := prometheus.Labels{SignalKey: signal}
	return &Exporter{
		signal:             signal,
		sentItems:          m.sentItems.With(labels),
		failedItems:        m.failedItems.With(labels),
		enqueueFailedItems: m.enqueueFailedItems.MustCurryWith(labels),
		batchSendSize:      m.batchSendSize.With(labels),
		exportDuration:     m.exportDuration.With(labels),
	}
}

// Exporter records the observability signals of one exporter.
type Exporter struct {
	signal             string
	sentItems          prometheus.Counter
	failedItems        prometheus.Counter
	enqueueFailedItems *prometheus.CounterVec
	batchSendSize      prometheus.Observer
	exportDuration     prometheus.Observer
}

// NewNopExporter returns an Exporter backed by unregistered collectors.
func NewNopExporter(signal string) *Exporter {
	m, _ := New(nil)
	return m.Exporter(signal)
}

// Signal returns the signal this Exporter is bound to.
func (e *Exporter) Signal() string {
	return e.signal
}

// ExportOp is an in-progress export operation.
type ExportOp struct {
	start time.Time
	exp   *Exporter
}

// StartExportOp is called at the start of an export RPC.
func (e *Exporter) StartExportOp() ExportOp {
	return ExportOp{start: time.Now(), exp: e}
}

// EndExportOp completes the export operation started by StartExportOp.
func (op ExportOp) EndExportOp(numItems int, err error) {
	e := op.exp
	e.exportDuration.Observe(time.Since(op.start).Seconds())
	e.batchSendSize.Observe(float64(numItems))
	if err != nil {
		e.failedItems.Add(float64(numItems))
		return
	}
	e.sentItems.Add(float64(numItems))
}

// RecordEnqueueFailure counts records refused before reaching the queue.
func (e *Exporter) RecordEnqueueFailure(reason string, numItems int) {
	e.enqueueFailedItems.WithLabelValues(reason).Add(float64(numItems))
}

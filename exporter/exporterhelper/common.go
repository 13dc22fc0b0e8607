// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/grpcarch/otlpbatch/exporter/exporterhelper"

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/grpcarch/otlpbatch/obsreport"
)

var (
	// ErrQueueFull is returned by Export when the pending queue is at
	// capacity. The record is dropped.
	ErrQueueFull = errors.New("pending queue is full")

	// ErrStopped is returned once the exporter is shutting down.
	ErrStopped = errors.New("exporter is stopped")

	errNilPushFunc = errors.New("nil push function")
)

// PushFunc sends one batch to its destination. The batch is owned by the
// callee for the duration of the call and released afterwards.
type PushFunc[T any] func(ctx context.Context, batch []T) error

// ShutdownFunc releases the resources behind a PushFunc, such as its gRPC
// connection. It runs after the last batch has been sent.
type ShutdownFunc func(ctx context.Context) error

// Settings carries the ambient dependencies of an exporter.
type Settings struct {
	Logger *zap.Logger
	ObsRep *obsreport.Exporter
}

// Option apply changes to baseSettings.
type Option func(*baseSettings)

type baseSettings struct {
	BatchSettings
	TimeoutSettings
	shutdown ShutdownFunc
}

func fromOptions(options []Option) *baseSettings {
	opts := &baseSettings{
		BatchSettings:   NewDefaultBatchSettings(),
		TimeoutSettings: NewDefaultTimeoutSettings(),
	}
	for _, op := range options {
		op(opts)
	}
	return opts
}

// WithShutdown overrides the default Shutdown function for an exporter.
// The default shutdown function does nothing and always returns nil.
func WithShutdown(shutdown ShutdownFunc) Option {
	return func(o *baseSettings) {
		o.shutdown = shutdown
	}
}

// WithTimeout overrides the default TimeoutSettings for an exporter.
// The default TimeoutSettings is 5 seconds.
func WithTimeout(timeoutSettings TimeoutSettings) Option {
	return func(o *baseSettings) {
		o.TimeoutSettings = timeoutSettings
	}
}

// WithBatch overrides the default BatchSettings for an exporter. Only
// queued exporters use it.
func WithBatch(batchSettings BatchSettings) Option {
	return func(o *baseSettings) {
		o.BatchSettings = batchSettings
	}
}

// BatchSettings defines how records are accumulated before being sent.
type BatchSettings struct {
	// FlushInterval is the period of the background flush.
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	// MaxBatchSize is the capacity of the pending queue and so the largest
	// number of records in one export request.
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// NewDefaultBatchSettings returns the default settings for BatchSettings.
func NewDefaultBatchSettings() BatchSettings {
	return BatchSettings{
		FlushInterval: time.Second,
		MaxBatchSize:  64,
	}
}

// Validate checks if the BatchSettings configuration is valid.
func (bs *BatchSettings) Validate() error {
	if bs.FlushInterval <= 0 {
		return errors.New("`flush_interval` must be positive")
	}
	if bs.MaxBatchSize <= 0 {
		return errors.New("`max_batch_size` must be positive")
	}
	return nil
}

// baseExporter holds what queued and synchronous exporters share: the push
// function, the per-request deadline and the shutdown hook.
type baseExporter[T any] struct {
	logger   *zap.Logger
	obsrep   *obsreport.Exporter
	push     PushFunc[T]
	timeout  TimeoutSettings
	shutdown ShutdownFunc
}

func newBaseExporter[T any](set Settings, push PushFunc[T], bs *baseSettings) (*baseExporter[T], error) {
	if push == nil {
		return nil, errNilPushFunc
	}
	logger := set.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	obsrep := set.ObsRep
	if obsrep == nil {
		obsrep = obsreport.NewNopExporter("")
	}
	return &baseExporter[T]{
		logger:   logger,
		obsrep:   obsrep,
		push:     push,
		timeout:  bs.TimeoutSettings,
		shutdown: bs.shutdown,
	}, nil
}

// send pushes one batch with a bounded deadline. Failures are logged and
// returned; the batch is never retried.
func (be *baseExporter[T]) send(ctx context.Context, batch []T) error {
	if len(batch) == 0 {
		return nil
	}
	ctx, cancel := be.timeout.apply(ctx)
	defer cancel()

	op := be.obsrep.StartExportOp()
	err := be.push(ctx, batch)
	op.EndExportOp(len(batch), err)
	if err != nil {
		be.logger.Error("Exporting failed. Dropping data.",
			zap.Error(err), zap.Int("dropped_items", len(batch)))
		return err
	}
	return nil
}

func (be *baseExporter[T]) shutdownFunc(ctx context.Context) error {
	if be.shutdown == nil {
		return nil
	}
	return be.shutdown(ctx)
}

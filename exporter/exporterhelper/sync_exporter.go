// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/grpcarch/otlpbatch/exporter/exporterhelper"

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// SyncExporter sends every batch on the caller's goroutine, with the same
// deadline, logging and accounting as BatchExporter but without a queue.
// It suits callers that already produce periodic snapshots.
type SyncExporter[T any] struct {
	*baseExporter[T]

	state  *atomic.Int32
	sendMu sync.Mutex
}

// NewSyncExporter creates a SyncExporter that sends batches with push.
func NewSyncExporter[T any](set Settings, push PushFunc[T], options ...Option) (*SyncExporter[T], error) {
	be, err := newBaseExporter(set, push, fromOptions(options))
	if err != nil {
		return nil, err
	}
	return &SyncExporter[T]{
		baseExporter: be,
		state:        atomic.NewInt32(stateRunning),
	}, nil
}

// Export sends batch and blocks until the request completes or times out.
// Concurrent calls are serialized.
func (sx *SyncExporter[T]) Export(ctx context.Context, batch []T) error {
	sx.sendMu.Lock()
	defer sx.sendMu.Unlock()
	if sx.state.Load() != stateRunning {
		return ErrStopped
	}
	return sx.send(ctx, batch)
}

// Shutdown waits for an in-flight Export and runs the shutdown hook. Only
// the first call does any work.
func (sx *SyncExporter[T]) Shutdown(ctx context.Context) error {
	sx.sendMu.Lock()
	defer sx.sendMu.Unlock()
	if !sx.state.CompareAndSwap(stateRunning, stateStopping) {
		return nil
	}
	err := sx.shutdownFunc(ctx)
	sx.state.Store(stateStopped)
	return err
}

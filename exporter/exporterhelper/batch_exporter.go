// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/grpcarch/otlpbatch/exporter/exporterhelper"

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	stateRunning int32 = iota
	stateStopping
	stateStopped
)

// BatchExporter accumulates records in a bounded pending queue and sends
// them as one batch per flush. Flushes happen on a fixed interval in a
// background goroutine, on an explicit Flush, and once more at Shutdown.
//
// Export never blocks on the network: a full queue drops the record and
// reports ErrQueueFull. Flushes are serialized, so batches leave in the
// order their records were enqueued.
type BatchExporter[T any] struct {
	*baseExporter[T]

	queue         *boundedQueue[T]
	flushInterval time.Duration
	state         *atomic.Int32

	// flushMu serializes drain+send so that the background flush and an
	// explicit Flush never send concurrently on the same connection.
	flushMu sync.Mutex

	startOnce  sync.Once
	shutdownC  chan struct{}
	goroutines sync.WaitGroup
}

// NewBatchExporter creates a BatchExporter that sends batches with push.
// Start must be called to begin the periodic flush.
func NewBatchExporter[T any](set Settings, push PushFunc[T], options ...Option) (*BatchExporter[T], error) {
	bs := fromOptions(options)
	if err := bs.BatchSettings.Validate(); err != nil {
		return nil, err
	}
	be, err := newBaseExporter(set, push, bs)
	if err != nil {
		return nil, err
	}
	return &BatchExporter[T]{
		baseExporter:  be,
		queue:         newBoundedQueue[T](bs.MaxBatchSize),
		flushInterval: bs.FlushInterval,
		state:         atomic.NewInt32(stateRunning),
		shutdownC:     make(chan struct{}),
	}, nil
}

// Start launches the background flush goroutine. Calling it more than once
// has no effect.
func (bx *BatchExporter[T]) Start() {
	bx.startOnce.Do(func() {
		if bx.state.Load() != stateRunning {
			return
		}
		bx.goroutines.Add(1)
		go bx.startProcessingCycle()
	})
}

func (bx *BatchExporter[T]) startProcessingCycle() {
	defer bx.goroutines.Done()
	ticker := time.NewTicker(bx.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-bx.shutdownC:
			return
		case <-ticker.C:
			// Failures are already logged and counted by send.
			_ = bx.Flush(context.Background())
		}
	}
}

// Export adds item to the pending queue. The caller must not retain
// references into item once it is handed over. It returns ErrQueueFull if
// the queue is at capacity and ErrStopped after Shutdown started; in both
// cases the item is dropped.
func (bx *BatchExporter[T]) Export(item T) error {
	if err := bx.queue.push(item); err != nil {
		reason := "queue_full"
		if errors.Is(err, ErrStopped) {
			reason = "stopped"
		}
		bx.obsrep.RecordEnqueueFailure(reason, 1)
		bx.logger.Debug("Dropping data because the pending queue refused it.",
			zap.Error(err), zap.Int("dropped_items", 1))
		return err
	}
	return nil
}

// Flush synchronously sends whatever is queued right now and waits for the
// request to complete or time out. An empty queue returns immediately.
func (bx *BatchExporter[T]) Flush(ctx context.Context) error {
	bx.flushMu.Lock()
	defer bx.flushMu.Unlock()
	return bx.send(ctx, bx.queue.drain())
}

// QueueSize returns the number of records waiting for the next flush.
func (bx *BatchExporter[T]) QueueSize() int {
	return bx.queue.size()
}

// Shutdown stops the background goroutine and waits for it, closes the
// queue, sends the remaining records in one final flush and then runs the
// shutdown hook. Only the first call does any work.
func (bx *BatchExporter[T]) Shutdown(ctx context.Context) error {
	if !bx.state.CompareAndSwap(stateRunning, stateStopping) {
		return nil
	}
	close(bx.shutdownC)
	bx.goroutines.Wait()

	bx.flushMu.Lock()
	err := bx.send(ctx, bx.queue.close())
	bx.flushMu.Unlock()

	err = multierr.Append(err, bx.shutdownFunc(ctx))
	bx.state.Store(stateStopped)
	return err
}

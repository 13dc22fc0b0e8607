// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/grpcarch/otlpbatch/exporter/exporterhelper"

import (
	"context"
	"time"
)

// TimeoutSettings for timeout. The timeout applies to individual attempts to send data to the backend.
type TimeoutSettings struct {
	// Timeout is the timeout for every attempt to send data to the backend.
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewDefaultTimeoutSettings returns the default settings for TimeoutSettings.
func NewDefaultTimeoutSettings() TimeoutSettings {
	return TimeoutSettings{
		Timeout: 5 * time.Second,
	}
}

// apply bounds ctx by the configured timeout. A zero timeout leaves the
// deadline of ctx unchanged.
func (ts TimeoutSettings) apply(ctx context.Context) (context.Context, context.CancelFunc) {
	if ts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ts.Timeout)
}

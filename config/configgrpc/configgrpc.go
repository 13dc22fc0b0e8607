// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package configgrpc defines the gRPC client configuration settings used to
// reach an OTLP collector.
package configgrpc // import "github.com/grpcarch/otlpbatch/config/configgrpc"

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding/gzip"
	"google.golang.org/grpc/keepalive"
)

const (
	// CompressionNone disables request compression.
	CompressionNone = ""
	// CompressionGzip compresses every request with gzip.
	CompressionGzip = "gzip"
)

var errUnsupportedCompression = errors.New("unsupported compression type")

// ClientSettings defines common settings for a gRPC client configuration.
type ClientSettings struct {
	// The target to which the exporter is going to send telemetry, in the form
	// [http(s)://]host[:port]. The port defaults to 4317.
	Endpoint string `mapstructure:"endpoint"`

	// The headers associated with gRPC requests.
	Headers map[string]string `mapstructure:"headers"`

	// The compression key for supported compression types. Currently the only
	// supported mode is `gzip`.
	Compression string `mapstructure:"compression"`

	// The keepalive parameters for client gRPC. See grpc.WithKeepaliveParams
	// (https://godoc.org/google.golang.org/grpc#WithKeepaliveParams).
	Keepalive *KeepaliveClientConfig `mapstructure:"keepalive"`

	// WaitForReady parameter configures client to wait for ready state before
	// sending data. Leave it off so that an unreachable collector fails a
	// request immediately instead of holding it until the deadline.
	WaitForReady bool `mapstructure:"wait_for_ready"`
}

// KeepaliveClientConfig exposes the keepalive.ClientParameters to be used by the exporter.
// See keepalive.ClientParameters for the meaning of each parameter.
type KeepaliveClientConfig struct {
	Time                time.Duration `mapstructure:"time"`
	Timeout             time.Duration `mapstructure:"timeout"`
	PermitWithoutStream bool          `mapstructure:"permit_without_stream"`
}

// Validate checks the settings.
func (gcs *ClientSettings) Validate() error {
	switch gcs.Compression {
	case CompressionNone, CompressionGzip:
	default:
		return fmt.Errorf("%w: %q", errUnsupportedCompression, gcs.Compression)
	}
	return nil
}

// SanitizedEndpoint strips any scheme from the endpoint, fills in the default
// port and returns the resulting host:port dial target.
func (gcs *ClientSettings) SanitizedEndpoint() string {
	return ParseEndpoint(gcs.Endpoint).Target()
}

// ToDialOptions maps configgrpc.ClientSettings to a slice of dial options for gRPC.
// Connections are always plaintext.
func (gcs *ClientSettings) ToDialOptions() ([]grpc.DialOption, error) {
	if err := gcs.Validate(); err != nil {
		return nil, err
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}

	if gcs.Keepalive != nil {
		keepAliveOption := grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                gcs.Keepalive.Time,
			Timeout:             gcs.Keepalive.Timeout,
			PermitWithoutStream: gcs.Keepalive.PermitWithoutStream,
		})
		opts = append(opts, keepAliveOption)
	}

	return opts, nil
}

// ToCallOptions returns the per-RPC options derived from the settings.
func (gcs *ClientSettings) ToCallOptions() []grpc.CallOption {
	opts := []grpc.CallOption{grpc.WaitForReady(gcs.WaitForReady)}
	if gcs.Compression == CompressionGzip {
		opts = append(opts, grpc.UseCompressor(gzip.Name))
	}
	return opts
}

// ToClientConn creates a lazily connecting client for the endpoint. It only
// fails when the target cannot be parsed or the options are invalid; no
// connection is attempted until the first RPC.
func (gcs *ClientSettings) ToClientConn(extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts, err := gcs.ToDialOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)
	return grpc.NewClient(gcs.SanitizedEndpoint(), opts...)
}

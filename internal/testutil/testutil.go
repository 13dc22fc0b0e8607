// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by the tests of this module.
package testutil // import "github.com/grpcarch/otlpbatch/internal/testutil"

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GetAvailableLocalAddress finds an available local port and returns an endpoint
// describing it. The port is available for opening when this function returns
// provided that there is no race by some other code to grab the same port
// immediately.
func GetAvailableLocalAddress(tb testing.TB) string {
	return findAvailableAddress(tb, "localhost")
}

// GetAvailableLocalIPv6Address is IPv6 version of GetAvailableLocalAddress.
func GetAvailableLocalIPv6Address(tb testing.TB) string {
	return findAvailableAddress(tb, "[::1]")
}

func findAvailableAddress(tb testing.TB, host string) string {
	ln, err := net.Listen("tcp", host+":0")
	require.NoError(tb, err, "Failed to get a free local port")
	// There is a possible race if something else takes this same port before
	// the test uses it, however, that is unlikely in practice.
	defer func() {
		assert.NoError(tb, ln.Close())
	}()
	return ln.Addr().String()
}

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package configgrpc // import "github.com/grpcarch/otlpbatch/config/configgrpc"

import (
	"net"
	"strings"
)

// DefaultPort is the standard OTLP/gRPC collector port.
const DefaultPort = "4317"

// Endpoint is a collector address split into host and port.
type Endpoint struct {
	Host string
	Port string
}

// ParseEndpoint splits a string of the form [http(s)://]host[:port] into its
// host and port. The scheme is dropped, the split happens on the last colon
// outside of an IPv6 bracket, and a missing port becomes DefaultPort.
// Malformed input never fails: the result is a best-effort pair and the
// channel built from it reports any problem.
func ParseEndpoint(endpoint string) Endpoint {
	s := strings.TrimSpace(endpoint)
	if rest, ok := strings.CutPrefix(s, "http://"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "https://"); ok {
		s = rest
	}
	s = strings.TrimSuffix(s, "/")

	idx := strings.LastIndexByte(s, ':')
	if idx < 0 || idx < strings.LastIndexByte(s, ']') {
		return Endpoint{Host: s, Port: DefaultPort}
	}
	host, port := s[:idx], s[idx+1:]
	if port == "" {
		port = DefaultPort
	}
	return Endpoint{Host: host, Port: port}
}

// Target renders the endpoint as a host:port dial target.
func (e Endpoint) Target() string {
	host := strings.TrimSuffix(strings.TrimPrefix(e.Host, "["), "]")
	return net.JoinHostPort(host, e.Port)
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.Target()
}

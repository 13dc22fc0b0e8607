// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package precord // import "github.com/grpcarch/otlpbatch/pdata/precord"

// SpanKind is the type of span, numbered as in OTLP.
type SpanKind int32

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindInternal
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

// String returns the string representation of the SpanKind.
func (sk SpanKind) String() string {
	switch sk {
	case SpanKindInternal:
		return "Internal"
	case SpanKindServer:
		return "Server"
	case SpanKindClient:
		return "Client"
	case SpanKindProducer:
		return "Producer"
	case SpanKindConsumer:
		return "Consumer"
	}
	return "Unspecified"
}

// StatusCode is the status of a finished span.
type StatusCode int32

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOk
	StatusCodeError
)

// String returns the string representation of the StatusCode.
func (sc StatusCode) String() string {
	switch sc {
	case StatusCodeOk:
		return "Ok"
	case StatusCodeError:
		return "Error"
	}
	return "Unset"
}

// Span is one finished operation. Identifiers are hex strings as they
// appear in a W3C traceparent header; they are decoded at encode time.
type Span struct {
	// TraceID holds 32 hex characters.
	TraceID string
	// SpanID holds 16 hex characters.
	SpanID string
	// ParentSpanID holds 16 hex characters, empty for a root span.
	ParentSpanID string

	Name              string
	Kind              SpanKind
	StartTimeUnixNano uint64
	EndTimeUnixNano   uint64
	Status            StatusCode
	StatusMessage     string
	Attributes        []Attribute
}

// Clone returns a copy of s that shares no memory with it.
func (s Span) Clone() Span {
	s.Attributes = cloneAttributes(s.Attributes)
	return s
}

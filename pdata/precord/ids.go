// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package precord // import "github.com/grpcarch/otlpbatch/pdata/precord"

import (
	"encoding/hex"
)

// EmptyTraceID represents the root trace context, all bytes zero.
var EmptyTraceID = TraceID([16]byte{})

// EmptySpanID is the all-zero span identifier.
var EmptySpanID = SpanID([8]byte{})

// TraceID is a trace identifier.
type TraceID [16]byte

// SpanID is a span identifier.
type SpanID [8]byte

// TraceIDFromHex decodes the 32 hex characters of s into a TraceID.
// Input that is short or not hex decodes to EmptyTraceID. Characters
// beyond the first 32 are ignored.
func TraceIDFromHex(s string) TraceID {
	var id TraceID
	if !decodeHexID(id[:], s) {
		return EmptyTraceID
	}
	return id
}

// SpanIDFromHex decodes the 16 hex characters of s into a SpanID, with the
// same defaulting rules as TraceIDFromHex.
func SpanIDFromHex(s string) SpanID {
	var id SpanID
	if !decodeHexID(id[:], s) {
		return EmptySpanID
	}
	return id
}

func decodeHexID(dst []byte, s string) bool {
	if len(s) < 2*len(dst) {
		return false
	}
	_, err := hex.Decode(dst, []byte(s[:2*len(dst)]))
	return err == nil
}

// Bytes returns the byte array representation of the TraceID.
func (id TraceID) Bytes() [16]byte {
	return id
}

// HexString returns the lower-case hex encoding of the TraceID.
func (id TraceID) HexString() string {
	return hex.EncodeToString(id[:])
}

// IsEmpty returns true if id contains only zero bytes.
func (id TraceID) IsEmpty() bool {
	return id == EmptyTraceID
}

// Bytes returns the byte array representation of the SpanID.
func (id SpanID) Bytes() [8]byte {
	return id
}

// HexString returns the lower-case hex encoding of the SpanID.
func (id SpanID) HexString() string {
	return hex.EncodeToString(id[:])
}

// IsEmpty returns true if id contains only zero bytes.
func (id SpanID) IsEmpty() bool {
	return id == EmptySpanID
}

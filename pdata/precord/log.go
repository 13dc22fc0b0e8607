// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package precord // import "github.com/grpcarch/otlpbatch/pdata/precord"

// Severity is the OTLP severity number of a log entry.
type Severity int32

const (
	SeverityUnspecified Severity = 0
	SeverityTrace       Severity = 1
	SeverityDebug       Severity = 5
	SeverityInfo        Severity = 9
	SeverityWarn        Severity = 13
	SeverityError       Severity = 17
	SeverityFatal       Severity = 21
)

// String returns the severity text sent alongside the severity number.
// Numbers between the named levels map to "UNSPECIFIED".
func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "TRACE"
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	}
	return "UNSPECIFIED"
}

// LogEntry is a single log record. TraceID and SpanID are optional and
// correlate the entry with a span when set.
type LogEntry struct {
	TraceID      string
	SpanID       string
	Severity     Severity
	Body         string
	TimeUnixNano uint64
	Attributes   []Attribute
}

// Clone returns a copy of l that shares no memory with it.
func (l LogEntry) Clone() LogEntry {
	l.Attributes = cloneAttributes(l.Attributes)
	return l
}

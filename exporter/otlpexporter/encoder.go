// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/grpcarch/otlpbatch/exporter/otlpexporter"

import (
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/grpcarch/otlpbatch/internal/version"
	"github.com/grpcarch/otlpbatch/pdata/precord"
)

const (
	serviceNameKey    = "service.name"
	serviceVersionKey = "service.version"

	spanIDHexLen = 2 * len(precord.SpanID{})
)

// encoder translates queued records into OTLP export requests. Every request
// carries exactly one resource and one instrumentation scope.
type encoder struct {
	serviceName    string
	serviceVersion string
}

func newEncoder(serviceName, serviceVersion string) *encoder {
	return &encoder{serviceName: serviceName, serviceVersion: serviceVersion}
}

func (e *encoder) resource() *resourcepb.Resource {
	attrs := []*commonpb.KeyValue{stringKeyValue(serviceNameKey, e.serviceName)}
	if e.serviceVersion != "" {
		attrs = append(attrs, stringKeyValue(serviceVersionKey, e.serviceVersion))
	}
	return &resourcepb.Resource{Attributes: attrs}
}

func scope() *commonpb.InstrumentationScope {
	return &commonpb.InstrumentationScope{Name: version.Name, Version: version.Version}
}

func (e *encoder) encodeTraces(spans []precord.Span) *coltracepb.ExportTraceServiceRequest {
	out := make([]*tracepb.Span, 0, len(spans))
	for i := range spans {
		out = append(out, encodeSpan(&spans[i]))
	}
	return &coltracepb.ExportTraceServiceRequest{
		ResourceSpans: []*tracepb.ResourceSpans{{
			Resource: e.resource(),
			ScopeSpans: []*tracepb.ScopeSpans{{
				Scope: scope(),
				Spans: out,
			}},
		}},
	}
}

func encodeSpan(s *precord.Span) *tracepb.Span {
	end := s.EndTimeUnixNano
	if end < s.StartTimeUnixNano {
		end = s.StartTimeUnixNano
	}
	span := &tracepb.Span{
		TraceId:           traceIDBytes(s.TraceID),
		SpanId:            spanIDBytes(s.SpanID),
		Name:              s.Name,
		Kind:              tracepb.Span_SpanKind(s.Kind),
		StartTimeUnixNano: s.StartTimeUnixNano,
		EndTimeUnixNano:   end,
		Attributes:        encodeAttributes(s.Attributes),
		Status: &tracepb.Status{
			Code:    tracepb.Status_StatusCode(s.Status),
			Message: s.StatusMessage,
		},
	}
	if len(s.ParentSpanID) >= spanIDHexLen {
		span.ParentSpanId = spanIDBytes(s.ParentSpanID)
	}
	return span
}

func (e *encoder) encodeLogs(entries []precord.LogEntry) *collogspb.ExportLogsServiceRequest {
	out := make([]*logspb.LogRecord, 0, len(entries))
	for i := range entries {
		out = append(out, encodeLogRecord(&entries[i]))
	}
	return &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{{
			Resource: e.resource(),
			ScopeLogs: []*logspb.ScopeLogs{{
				Scope:      scope(),
				LogRecords: out,
			}},
		}},
	}
}

// encodeLogRecord always sets both IDs; entries without a span context
// carry all-zero ones.
func encodeLogRecord(l *precord.LogEntry) *logspb.LogRecord {
	return &logspb.LogRecord{
		TimeUnixNano:   l.TimeUnixNano,
		SeverityNumber: logspb.SeverityNumber(l.Severity),
		SeverityText:   l.Severity.String(),
		Body:           stringValue(l.Body),
		Attributes:     encodeAttributes(l.Attributes),
		TraceId:        traceIDBytes(l.TraceID),
		SpanId:         spanIDBytes(l.SpanID),
	}
}

func (e *encoder) encodeMetrics(metrics []precord.Metric) *colmetricspb.ExportMetricsServiceRequest {
	out := make([]*metricspb.Metric, 0, len(metrics))
	for i := range metrics {
		out = append(out, encodeMetric(&metrics[i]))
	}
	return &colmetricspb.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricspb.ResourceMetrics{{
			Resource: e.resource(),
			ScopeMetrics: []*metricspb.ScopeMetrics{{
				Scope:   scope(),
				Metrics: out,
			}},
		}},
	}
}

func encodeMetric(m *precord.Metric) *metricspb.Metric {
	out := &metricspb.Metric{
		Name:        m.Name,
		Description: m.Description,
		Unit:        m.Unit,
	}
	if m.PointCount() == 0 {
		return out
	}
	switch m.Kind {
	case precord.MetricKindCounter:
		out.Data = &metricspb.Metric_Sum{Sum: &metricspb.Sum{
			DataPoints:             encodeNumberDataPoints(m.DataPoints),
			AggregationTemporality: metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE,
			IsMonotonic:            true,
		}}
	case precord.MetricKindGauge:
		out.Data = &metricspb.Metric_Gauge{Gauge: &metricspb.Gauge{
			DataPoints: encodeNumberDataPoints(m.DataPoints),
		}}
	case precord.MetricKindHistogram:
		out.Data = &metricspb.Metric_Histogram{Histogram: &metricspb.Histogram{
			DataPoints:             encodeHistogramDataPoints(m.HistogramPoints),
			AggregationTemporality: metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE,
		}}
	}
	return out
}

func encodeNumberDataPoints(points []precord.NumberDataPoint) []*metricspb.NumberDataPoint {
	out := make([]*metricspb.NumberDataPoint, 0, len(points))
	for i := range points {
		p := &points[i]
		dp := &metricspb.NumberDataPoint{
			StartTimeUnixNano: p.StartTimeUnixNano,
			TimeUnixNano:      p.TimeUnixNano,
			Attributes:        encodeAttributes(p.Attributes),
		}
		if p.IsDouble {
			dp.Value = &metricspb.NumberDataPoint_AsDouble{AsDouble: p.DoubleValue}
		} else {
			dp.Value = &metricspb.NumberDataPoint_AsInt{AsInt: p.IntValue}
		}
		out = append(out, dp)
	}
	return out
}

func encodeHistogramDataPoints(points []precord.HistogramDataPoint) []*metricspb.HistogramDataPoint {
	out := make([]*metricspb.HistogramDataPoint, 0, len(points))
	for i := range points {
		p := &points[i]
		sum := p.Sum
		dp := &metricspb.HistogramDataPoint{
			StartTimeUnixNano: p.StartTimeUnixNano,
			TimeUnixNano:      p.TimeUnixNano,
			Count:             p.Count,
			Sum:               &sum,
			Attributes:        encodeAttributes(p.Attributes),
		}
		// Inconsistent bucket arrays are dropped; count and sum still go out.
		if p.HasBuckets() {
			dp.BucketCounts = p.BucketCounts
			dp.ExplicitBounds = p.ExplicitBounds
		}
		out = append(out, dp)
	}
	return out
}

func encodeAttributes(attrs []precord.Attribute) []*commonpb.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]*commonpb.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, stringKeyValue(a.Key, a.Value))
	}
	return out
}

func stringKeyValue(key, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{Key: key, Value: stringValue(value)}
}

func stringValue(v string) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v}}
}

func traceIDBytes(hex string) []byte {
	id := precord.TraceIDFromHex(hex).Bytes()
	return id[:]
}

func spanIDBytes(hex string) []byte {
	id := precord.SpanIDFromHex(hex).Bytes()
	return id[:]
}

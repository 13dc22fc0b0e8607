// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package precord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "TRACE", SeverityTrace.String())
	assert.Equal(t, "DEBUG", SeverityDebug.String())
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARN", SeverityWarn.String())
	assert.Equal(t, "ERROR", SeverityError.String())
	assert.Equal(t, "FATAL", SeverityFatal.String())
	assert.Equal(t, "UNSPECIFIED", SeverityUnspecified.String())
	assert.Equal(t, "UNSPECIFIED", Severity(10).String())
	assert.EqualValues(t, 17, SeverityError)
}

func TestSpanKindString(t *testing.T) {
	assert.Equal(t, "Server", SpanKindServer.String())
	assert.Equal(t, "Unspecified", SpanKind(42).String())
	assert.EqualValues(t, 5, SpanKindConsumer)
}

func TestSpanCloneOwnsAttributes(t *testing.T) {
	attrs := []Attribute{Attr("http.method", "GET")}
	span := Span{Name: "op", Attributes: attrs}
	clone := span.Clone()

	attrs[0].Value = "POST"
	assert.Equal(t, "GET", clone.Attributes[0].Value)
	assert.Equal(t, "op", clone.Name)
}

func TestLogEntryCloneOwnsAttributes(t *testing.T) {
	attrs := []Attribute{Attr("k", "v")}
	entry := LogEntry{Body: "hello", Attributes: attrs}
	clone := entry.Clone()

	attrs[0] = Attr("changed", "changed")
	assert.Equal(t, Attr("k", "v"), clone.Attributes[0])
	assert.Nil(t, LogEntry{}.Clone().Attributes)
}

func TestMetricClone(t *testing.T) {
	bounds := []float64{1, 10}
	counts := []uint64{1, 2, 3}
	m := Metric{
		Name:       "latency",
		Kind:       MetricKindHistogram,
		DataPoints: []NumberDataPoint{IntPoint(1, 2, Attr("a", "b"))},
		HistogramPoints: []HistogramDataPoint{{
			Count:          6,
			Sum:            42,
			ExplicitBounds: bounds,
			BucketCounts:   counts,
		}},
	}
	clone := m.Clone()

	bounds[0] = 100
	counts[0] = 100
	m.DataPoints[0].Attributes[0].Value = "changed"

	assert.Equal(t, []float64{1, 10}, clone.HistogramPoints[0].ExplicitBounds)
	assert.Equal(t, []uint64{1, 2, 3}, clone.HistogramPoints[0].BucketCounts)
	assert.Equal(t, "b", clone.DataPoints[0].Attributes[0].Value)
}

func TestHistogramHasBuckets(t *testing.T) {
	assert.False(t, HistogramDataPoint{Count: 3, Sum: 1}.HasBuckets())
	assert.True(t, HistogramDataPoint{ExplicitBounds: []float64{5}, BucketCounts: []uint64{1, 2}}.HasBuckets())
	assert.False(t, HistogramDataPoint{ExplicitBounds: []float64{5, 10}, BucketCounts: []uint64{1, 2}}.HasBuckets())
}

func TestNumberPoints(t *testing.T) {
	ip := IntPoint(10, 7)
	assert.False(t, ip.IsDouble)
	assert.EqualValues(t, 7, ip.IntValue)

	dp := DoublePoint(10, 1.5, Attr("k", "v"))
	assert.True(t, dp.IsDouble)
	assert.InDelta(t, 1.5, dp.DoubleValue, 1e-9)
	assert.Len(t, dp.Attributes, 1)

	assert.Equal(t, 1, Metric{Kind: MetricKindGauge, DataPoints: []NumberDataPoint{ip}}.PointCount())
	assert.Equal(t, 0, Metric{Kind: MetricKindHistogram, DataPoints: []NumberDataPoint{ip}}.PointCount())
}

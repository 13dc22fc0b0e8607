// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package precord // import "github.com/grpcarch/otlpbatch/pdata/precord"

// MetricKind selects which data points of a Metric are meaningful.
type MetricKind int32

const (
	MetricKindCounter MetricKind = iota
	MetricKindGauge
	MetricKindHistogram
)

// String returns the string representation of the MetricKind.
func (mk MetricKind) String() string {
	switch mk {
	case MetricKindCounter:
		return "Counter"
	case MetricKindGauge:
		return "Gauge"
	case MetricKindHistogram:
		return "Histogram"
	}
	return ""
}

// Metric is a named metric together with its data points. Counters and
// gauges use DataPoints, histograms use HistogramPoints.
type Metric struct {
	Name        string
	Description string
	Unit        string
	Kind        MetricKind

	DataPoints      []NumberDataPoint
	HistogramPoints []HistogramDataPoint
}

// NumberDataPoint is a single counter or gauge value. The value is either
// an integer or a double, as selected by IsDouble.
type NumberDataPoint struct {
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	IsDouble          bool
	IntValue          int64
	DoubleValue       float64
	Attributes        []Attribute
}

// IntPoint returns an integer NumberDataPoint.
func IntPoint(ts uint64, v int64, attrs ...Attribute) NumberDataPoint {
	return NumberDataPoint{TimeUnixNano: ts, IntValue: v, Attributes: attrs}
}

// DoublePoint returns a floating point NumberDataPoint.
func DoublePoint(ts uint64, v float64, attrs ...Attribute) NumberDataPoint {
	return NumberDataPoint{TimeUnixNano: ts, IsDouble: true, DoubleValue: v, Attributes: attrs}
}

// HistogramDataPoint is an explicit-bucket histogram. BucketCounts has one
// more element than ExplicitBounds; both may be empty for a count/sum only
// point.
type HistogramDataPoint struct {
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	Count             uint64
	Sum               float64
	ExplicitBounds    []float64
	BucketCounts      []uint64
	Attributes        []Attribute
}

// HasBuckets reports whether the bucket arrays are present and consistent.
func (hp HistogramDataPoint) HasBuckets() bool {
	return len(hp.BucketCounts) > 0 && len(hp.BucketCounts) == len(hp.ExplicitBounds)+1
}

// Clone returns a copy of m that shares no memory with it.
func (m Metric) Clone() Metric {
	if m.DataPoints != nil {
		dps := make([]NumberDataPoint, len(m.DataPoints))
		for i, dp := range m.DataPoints {
			dp.Attributes = cloneAttributes(dp.Attributes)
			dps[i] = dp
		}
		m.DataPoints = dps
	}
	if m.HistogramPoints != nil {
		hps := make([]HistogramDataPoint, len(m.HistogramPoints))
		for i, hp := range m.HistogramPoints {
			hp.Attributes = cloneAttributes(hp.Attributes)
			if hp.ExplicitBounds != nil {
				hp.ExplicitBounds = append([]float64(nil), hp.ExplicitBounds...)
			}
			if hp.BucketCounts != nil {
				hp.BucketCounts = append([]uint64(nil), hp.BucketCounts...)
			}
			hps[i] = hp
		}
		m.HistogramPoints = hps
	}
	return m
}

// PointCount returns the number of data points carried by m for its kind.
func (m Metric) PointCount() int {
	if m.Kind == MetricKindHistogram {
		return len(m.HistogramPoints)
	}
	return len(m.DataPoints)
}

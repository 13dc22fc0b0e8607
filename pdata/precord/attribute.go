// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package precord // import "github.com/grpcarch/otlpbatch/pdata/precord"

// Attribute is a string key/value pair attached to a record.
type Attribute struct {
	Key   string
	Value string
}

// Attr is a shorthand constructor for Attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func cloneAttributes(attrs []Attribute) []Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]Attribute, len(attrs))
	copy(out, attrs)
	return out
}

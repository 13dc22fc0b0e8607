// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries build information stamped in at link time.
package version // import "github.com/grpcarch/otlpbatch/internal/version"

import (
	"bytes"
	"fmt"
	"runtime"
)

const (
	buildDev = "dev"

	// Name is reported as the instrumentation scope and user agent product.
	Name = "otlpbatch"
)

// Version variable will be replaced at link time after `make` has been run.
var Version = "latest"

// GitHash variable will be replaced at link time after `make` has been run.
var GitHash = "<NOT PROPERLY GENERATED>"

// BuildType should be one of (dev, release).
var BuildType = buildDev

// IsDevBuild returns true if this is a development (local) build.
func IsDevBuild() bool {
	return BuildType == buildDev
}

// UserAgent returns the gRPC user agent of the exporters, e.g.
// "otlpbatch/1.2.0 (linux/amd64)".
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s/%s)", Name, Version, runtime.GOOS, runtime.GOARCH)
}

// InfoVar is a singleton instance of the Info struct.
var InfoVar = Info([][2]string{
	{"Version", Version},
	{"GitHash", GitHash},
	{"BuildType", BuildType},
	{"Goversion", runtime.Version()},
	{"OS", runtime.GOOS},
	{"Architecture", runtime.GOARCH},
})

// Info has properties about the build and runtime.
type Info [][2]string

// String returns a formatted string, with linebreaks, intended to be displayed
// on stdout.
func (i Info) String() string {
	buf := new(bytes.Buffer)
	maxRow1Alignment := 0
	for _, prop := range i {
		if cl0 := len(prop[0]); cl0 > maxRow1Alignment {
			maxRow1Alignment = cl0
		}
	}

	for _, prop := range i {
		fmt.Fprintf(buf, "%*s %s\n", -maxRow1Alignment, prop[0], prop[1])
	}
	return buf.String()
}

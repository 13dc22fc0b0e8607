// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Program otlpdemo simulates a request-serving process that reports its
// spans, logs and request metrics to an OTLP collector.
package main

import (
	"github.com/spf13/cobra"

	"github.com/grpcarch/otlpbatch/cmd/otlpdemo/internal"
)

func main() {
	cmd, err := internal.Command()
	cobra.CheckErr(err)
	cobra.CheckErr(cmd.Execute())
}

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/grpcarch/otlpbatch/cmd/otlpdemo/internal"

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grpcarch/otlpbatch/internal/version"
	"github.com/grpcarch/otlpbatch/service"
)

// options holds the flags that drive the simulation rather than the
// telemetry configuration.
type options struct {
	configFile   string
	metricsAddr  string
	requests     int
	requestDelay time.Duration
}

// Command is the main entrypoint for this application
func Command() (*cobra.Command, error) {
	opts := &options{}
	defaults := service.NewDefaultConfig()

	cmd := &cobra.Command{
		SilenceUsage:  true, // Don't print usage on Run error.
		SilenceErrors: true, // Don't print errors; main does it.
		Use:           "otlpdemo",
		Long: fmt.Sprintf("OTLP batching exporter demo (%s)", version.Version) + `

otlpdemo simulates a service handling requests and exports one span, one
log entry and the request metrics for each of them to the OTLP/gRPC
collector given by "--endpoint".
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts.configFile)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Address to serve the self-observability metrics on, e.g. localhost:8888. Empty disables it")
	cmd.Flags().IntVar(&opts.requests, "requests", 10, "Number of requests to simulate")
	cmd.Flags().DurationVar(&opts.requestDelay, "request-delay", 100*time.Millisecond, "Pause between two simulated requests")

	// the telemetry configuration, which we accept as CLI flags as well
	cmd.Flags().String("endpoint", defaults.Exporter.Endpoint, "Collector endpoint in the form [http(s)://]host[:port]")
	cmd.Flags().String("service-name", defaults.Exporter.ServiceName, "Value of the service.name resource attribute")
	cmd.Flags().String("service-version", defaults.Exporter.ServiceVersion, "Value of the service.version resource attribute")
	cmd.Flags().StringToString("header", defaults.Exporter.Headers, "Header sent with every export request, as key=value")
	cmd.Flags().String("compression", defaults.Exporter.Compression, `Request compression, "gzip" or empty`)
	cmd.Flags().Duration("timeout", defaults.Exporter.Timeout, "Deadline of one export request")
	cmd.Flags().Duration("flush-interval", defaults.Exporter.FlushInterval, "Period of the background flush")
	cmd.Flags().Int("max-batch-size", defaults.Exporter.MaxBatchSize, "Capacity of the span and log queues")
	cmd.Flags().Duration("metrics-interval", defaults.RequestMetrics.Interval, "Period of the request metrics export")
	cmd.Flags().String("metrics-prefix", defaults.RequestMetrics.Prefix, "Prefix of the request metric names. Derived from the service name when empty")
	cmd.Flags().String("log-level", defaults.Logs.Level.String(), "Minimum enabled log level")
	cmd.Flags().String("log-encoding", defaults.Logs.Encoding, `Log encoding, "console" or "json"`)

	// version of this binary
	cmd.AddCommand(versionCommand())

	return cmd, nil
}

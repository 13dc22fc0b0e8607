// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grpcarch/otlpbatch/internal/testutil/collectortest"
	"github.com/grpcarch/otlpbatch/internal/version"
)

func TestCommand(t *testing.T) {
	want := &cobra.Command{
		SilenceUsage:  true,
		SilenceErrors: true,
		Use:           "otlpdemo",
		Long:          "OTLP batching exporter demo",
	}

	got, err := Command()
	require.NoError(t, err)
	assert.Equal(t, want.Use, got.Use)
	assert.Equal(t, want.SilenceUsage, got.SilenceUsage)
	assert.Equal(t, want.SilenceErrors, got.SilenceErrors)
	assert.True(t, strings.HasPrefix(got.Long, want.Long))
	assert.Empty(t, got.Short)
	assert.True(t, got.Flags().HasFlags())
	for name := range flagKeys {
		assert.NotNil(t, got.Flags().Lookup(name), name)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd, err := Command()
	require.NoError(t, err)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "otlpdemo version "+version.Version)
	assert.Contains(t, out.String(), "GitHash")
	assert.Contains(t, out.String(), "development build")
}

func TestCommandRejectsArgs(t *testing.T) {
	cmd, err := Command()
	require.NoError(t, err)
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}

func TestCommandRequiresEndpoint(t *testing.T) {
	clearOTelEnv(t)
	cmd, err := Command()
	require.NoError(t, err)
	cmd.SetArgs([]string{"--service-name", "demo"})
	assert.ErrorContains(t, cmd.Execute(), `requires a non-empty "endpoint"`)
}

func TestCommandExportsToCollector(t *testing.T) {
	clearOTelEnv(t)
	col := collectortest.Start(t)

	cmd, err := Command()
	require.NoError(t, err)
	cmd.SetArgs([]string{
		"--endpoint", col.Endpoint,
		"--service-name", "demo",
		"--requests", "3",
		"--request-delay", "0s",
		"--log-level", "error",
	})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 3, col.Traces.SpanCount())
	assert.Equal(t, 3, col.Logs.LogRecordCount())
	require.Len(t, col.Metrics.Requests(), 1)

	metrics := col.Metrics.Requests()[0].GetResourceMetrics()[0].GetScopeMetrics()[0].GetMetrics()
	require.NotEmpty(t, metrics)
	assert.Equal(t, "demo_requests_total", metrics[0].GetName())
	assert.Equal(t, int64(3), metrics[0].GetSum().GetDataPoints()[0].GetAsInt())
}

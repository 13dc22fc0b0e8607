// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/grpcarch/otlpbatch/cmd/otlpdemo/internal"

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"

	"github.com/grpcarch/otlpbatch/config/configgrpc"
	"github.com/grpcarch/otlpbatch/service"
)

// flagKeys maps the configuration flags to their configuration keys. Flags
// not listed here are not part of the configuration.
var flagKeys = map[string]string{
	"endpoint":         "exporter.endpoint",
	"service-name":     "exporter.service_name",
	"service-version":  "exporter.service_version",
	"header":           "exporter.headers",
	"compression":      "exporter.compression",
	"timeout":          "exporter.timeout",
	"flush-interval":   "exporter.flush_interval",
	"max-batch-size":   "exporter.max_batch_size",
	"metrics-interval": "request_metrics.interval",
	"metrics-prefix":   "request_metrics.prefix",
	"log-level":        "logs.level",
	"log-encoding":     "logs.encoding",
}

// envKeys maps the standard OpenTelemetry SDK environment variables to
// configuration keys.
var envKeys = map[string]string{
	"OTEL_EXPORTER_OTLP_ENDPOINT":    "exporter.endpoint",
	"OTEL_EXPORTER_OTLP_HEADERS":     "exporter.headers",
	"OTEL_EXPORTER_OTLP_COMPRESSION": "exporter.compression",
	"OTEL_SERVICE_NAME":              "exporter.service_name",
	"OTEL_SERVICE_VERSION":           "exporter.service_version",
	"OTEL_LOG_LEVEL":                 "logs.level",
}

// loadConfig builds the configuration from, in increasing precedence, the
// defaults, the YAML file at cfgFile, the environment and the flags that
// were set explicitly.
func loadConfig(flags *flag.FlagSet, cfgFile string) (*service.Config, error) {
	k := koanf.New(".")

	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load configuration file: %w", err)
		}
	}

	// handle env variables
	if err := k.Load(env.ProviderWithValue("OTEL_", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *flag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		val := posflag.FlagVal(flags, f)
		if m, ok := val.(map[string]string); ok {
			return key, stringMap(m)
		}
		return key, val
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load command line arguments: %w", err)
	}

	cfg := service.NewDefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "mapstructure",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Exporter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exporter configuration: %w", err)
	}
	return cfg, nil
}

func envValue(name, value string) (string, any) {
	key, ok := envKeys[name]
	if !ok || value == "" {
		return "", nil
	}
	switch name {
	case "OTEL_EXPORTER_OTLP_HEADERS":
		return key, parseHeaders(value)
	case "OTEL_EXPORTER_OTLP_COMPRESSION":
		if value == "none" {
			return key, configgrpc.CompressionNone
		}
	}
	return key, value
}

// parseHeaders parses the W3C baggage style "k1=v1,k2=v2" list used by
// OTEL_EXPORTER_OTLP_HEADERS. Malformed members are skipped.
func parseHeaders(s string) map[string]any {
	headers := map[string]any{}
	for _, member := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(member, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

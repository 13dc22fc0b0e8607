// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/grpcarch/otlpbatch/cmd/otlpdemo/internal"

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grpcarch/otlpbatch/internal/version"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version of otlpdemo",
		Long:  "Prints the version and build information of the otlpdemo binary",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(fmt.Sprintf("%s version %s", cmd.Parent().Name(), version.Version))
			if version.IsDevBuild() {
				cmd.Println("This is a development build and is not supported.")
			}
			cmd.Print(version.InfoVar.String())
		},
	}
}

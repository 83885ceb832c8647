package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "user-fixture-service",
		Short:        "User fixture service with gRPC, gateway and Gin APIs",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		serveCmd(),
		validateEmailCmd(),
		formatNameCmd(),
		showConfigCmd(),
	)
	return cmd
}

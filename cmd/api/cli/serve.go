package cli

import (
	"os"

	"user-fixture-service/cmd/api/app"
	"user-fixture-service/cmd/api/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var configPath string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC, gateway and Gin servers until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := server.WithSignal(cmd.Context())
			defer stop()

			a, err := app.New(ctx, configPath)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}

	c.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "directory holding app.env")
	return c
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "."
}

package cli

import (
	"encoding/json"
	"fmt"

	"user-fixture-service/internal/config"
	"user-fixture-service/pkg/textutil"

	"github.com/spf13/cobra"
)

func validateEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-email ADDRESS",
		Short: "Report whether ADDRESS is a well-formed email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), textutil.ValidateEmail(args[0]))
			return err
		},
	}
}

func formatNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format-name FIRST LAST",
		Short: "Print the title-cased full name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), textutil.FormatName(args[0], args[1]))
			return err
		},
	}
}

func showConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-config [PATH]",
		Short: "Print the settings the config loader returns for PATH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(config.NewLoader(path).Load())
		},
	}
}

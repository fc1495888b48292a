package main

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/beatvid/settings"
)

func newSchemaCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(settings.Schema(), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding schema: %w", err)
			}

			switch format {
			case "json":
			case "yaml":
				out, err = yaml.JSONToYAML(out)
				if err != nil {
					return fmt.Errorf("encoding schema: %w", err)
				}

			default:
				return fmt.Errorf("unknown format %q, want json or yaml", format)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format, one of: json, yaml")

	_ = cmd.RegisterFlagCompletionFunc("format", //nolint:errcheck // Flag is registered above.
		cobra.FixedCompletions([]string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

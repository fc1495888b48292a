package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/beatvid/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logger.LogAttrs(cmd.Context(), slog.LevelDebug, "build info", version.Attrs()...)

			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())

			return err
		},
	}
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/beatvid/effect"
)

func newEffectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "effects",
		Short: "List the available effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(tw, "VALUE\tNAME\tDISPLAY NAME\tPERIODIC")

			for _, k := range effect.Kinds() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", k.Value(), k, k.DisplayName(), k.Periodic())
			}

			err := tw.Flush()
			if err != nil {
				return fmt.Errorf("writing effects: %w", err)
			}

			return nil
		},
	}
}

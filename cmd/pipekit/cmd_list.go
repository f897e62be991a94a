package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %s\n", s.name, s.description)
			}
		},
	}
}

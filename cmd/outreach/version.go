package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shpitdev/contact-outreach/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Current)
		},
	}
}

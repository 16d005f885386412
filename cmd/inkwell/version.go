package main

import (
	"fmt"

	"github.com/spf13/cobra"

	inkwell "github.com/iw2rmb/inkwell"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the inkwell version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkwell version %s\n", inkwell.Version())
		},
	}
}

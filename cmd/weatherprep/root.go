package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "weatherprep",
		Short:        "Prepare weather observations for rain prediction",
		Long:         "Clean, encode and scale a daily weather observation CSV and split it into train and test sets.",
		SilenceUsage: true,
	}
	root.AddCommand(newPrepareCmd(), newValidateCmd())
	return root
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/weather-prep/internal/adapter/csvout"
	"github.com/couchcryptid/weather-prep/internal/domain"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check a written split for NaN features, bad labels and shape mismatches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			split, err := csvout.ReadSplit(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			problems := domain.CheckSplit(split)
			for _, p := range problems {
				fmt.Fprintf(out, "  FAIL  %s\n", p)
			}
			if len(problems) > 0 {
				return errors.New("split failed validation")
			}
			fmt.Fprintf(out, "  PASS  %d features, %d train rows, %d test rows\n",
				len(split.Features), split.TrainRows(), split.TestRows())
			return nil
		},
	}
}

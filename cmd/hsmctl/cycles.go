package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCyclesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles FILE",
		Short: "Report containment cycles reachable from the initial state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.load(args[0])
			if err != nil {
				return err
			}
			m, err := def.Build()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cycles := m.DetectCycles()
			if len(cycles) == 0 {
				fmt.Fprintln(out, "No cycles detected")
				return nil
			}
			for _, c := range cycles {
				fmt.Fprintln(out, c)
			}
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errInvalid = errors.New("definition is invalid")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a definition for structural problems",
		Long:  `Loads the definition, builds the machine and reports dangling transitions, composites without a valid initial state and containment cycles.`,
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

			problems := m.Graph().Validate()
			out := cmd.OutOrStdout()
			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintf(out, "- %s\n", p)
				}
				a.logger.Warn("validation failed", "path", args[0], "problems", len(problems))
				return fmt.Errorf("%w: %d problem(s)", errInvalid, len(problems))
			}
			fmt.Fprintln(out, "Definition is valid")
			return nil
		},
	}
}

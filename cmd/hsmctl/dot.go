package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anggasct/hsm/visualization"
)

func newDotCmd(a *app) *cobra.Command {
	var (
		output string
		svg    bool
	)

	cmd := &cobra.Command{
		Use:   "dot FILE",
		Short: "Export the state graph as Graphviz DOT",
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

			opts := visualization.DefaultDOTOptions()
			opts.RankDirection = a.cfg.RankDir
			if def.Name != "" {
				opts.Name = def.Name
			}
			gen := visualization.ForMachine(m.Machine, opts)

			if output != "" {
				if err := gen.GenerateToFile(output); err != nil {
					return err
				}
				a.logger.Info("dot written", "path", output)
				return nil
			}

			var content string
			if svg {
				content, err = gen.GenerateSVG()
			} else {
				content, err = gen.Generate()
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write DOT to a file instead of stdout")
	cmd.Flags().BoolVar(&svg, "svg", false, "Render SVG through the Graphviz dot command")
	return cmd
}

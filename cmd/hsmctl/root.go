package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/anggasct/hsm/definition"
	"github.com/anggasct/hsm/internal/config"
	"github.com/anggasct/hsm/internal/logging"
)

// app carries the state shared by every command
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "hsmctl",
		Short:         "hsmctl inspects and runs hierarchical state machine definitions",
		Long:          `hsmctl loads YAML state machine definitions, validates them, renders them as Graphviz DOT and feeds events through them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				cfg.LogLevel = "debug"
			}
			a.cfg = cfg
			a.logger = logging.New(cmd.ErrOrStderr(), cfg.Level(), cfg.LogFormat)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newCyclesCmd(a),
		newDotCmd(a),
		newRunCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) load(path string) (*definition.Definition, error) {
	def, err := definition.Load(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("definition loaded", "path", path, "name", def.Name)
	return def, nil
}

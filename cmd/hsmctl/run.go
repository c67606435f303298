package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/anggasct/hsm"
	"github.com/anggasct/hsm/hooks"
)

func newRunCmd(a *app) *cobra.Command {
	var metrics bool

	cmd := &cobra.Command{
		Use:   "run FILE EVENT...",
		Short: "Start a machine and feed it events",
		Long:  `Builds the machine, starts it and processes each EVENT in order, printing the active state path after every step.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.load(args[0])
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			metricsHook, err := hooks.NewMetricsHook(reg, "hsm")
			if err != nil {
				return err
			}
			recorder := hooks.NewHistoryRecorder(0)

			m, err := def.Build(
				hsm.WithLogger(a.logger),
				hsm.WithHooks(
					hooks.NewLoggingHook(a.logger, slog.LevelDebug),
					metricsHook,
					recorder,
				),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := m.Start(); err != nil {
				return err
			}
			fmt.Fprintf(out, "start: %s\n", statePath(m))

			for _, event := range args[1:] {
				handled, err := m.ProcessEvent(hsm.NewEvent(event, nil))
				if err != nil {
					return fmt.Errorf("event %q: %w", event, err)
				}
				status := "handled"
				if !handled {
					status = "ignored"
				}
				fmt.Fprintf(out, "%s: %s (%s)\n", event, statePath(m), status)
			}

			if err := m.Stop(); err != nil {
				return err
			}
			fmt.Fprintf(out, "visited: %s\n", strings.Join(recorder.Path(), " -> "))

			if metrics {
				return writeMetrics(out, reg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print collected metrics after the run")
	return cmd
}

// statePath describes the current state, descending into active regions
func statePath(m *hsm.CompositeMachine) string {
	state := m.CurrentState()
	if state == nil {
		return "<none>"
	}
	path := state.Name()
	sub, ok := m.Submachine(state.Name())
	if !ok {
		return path
	}
	if nested, ok := sub.(*hsm.CompositeMachine); ok && nested.IsRunning() {
		return path + "/" + statePath(nested)
	}
	return path
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				value = float64(metric.GetHistogram().GetSampleCount())
			default:
				continue
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/hsm"
)

// DOTGenerator generates Graphviz DOT format representations of state graphs
type DOTGenerator struct {
	graph   *hsm.Graph
	initial string
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	Name                string
	ShowTriggers        bool
	ShowPriorities      bool
	ClusterComposites   bool
	RankDirection       string // "TB", "LR", "BT", "RL"
	NodeShape           string
	CompositeStateStyle string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		Name:                "StateMachine",
		ShowTriggers:        true,
		ShowPriorities:      true,
		ClusterComposites:   true,
		RankDirection:       "TB",
		NodeShape:           "box",
		CompositeStateStyle: "rounded,filled",
	}
}

// NewDOTGenerator creates a new DOT generator for a graph whose machine
// starts in initial
func NewDOTGenerator(graph *hsm.Graph, initial string, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		graph:   graph,
		initial: initial,
		options: opts,
	}
}

// ForMachine creates a DOT generator for a machine's graph
func ForMachine(m *hsm.Machine, options ...DOTOptions) *DOTGenerator {
	initial := ""
	if s := m.InitialState(); s != nil {
		initial = s.Name()
	}
	return NewDOTGenerator(m.Graph(), initial, options...)
}

// Generate creates a DOT representation of the state graph
func (g *DOTGenerator) Generate() (string, error) {
	if g.graph == nil {
		return "", fmt.Errorf("graph is nil")
	}

	var dot strings.Builder

	name := g.options.Name
	if name == "" {
		name = "StateMachine"
	}
	rankdir := g.options.RankDirection
	if rankdir == "" {
		rankdir = "TB"
	}
	shape := g.options.NodeShape
	if shape == "" {
		shape = "box"
	}

	fmt.Fprintf(&dot, "digraph %s {\n", quote(name))
	fmt.Fprintf(&dot, "  rankdir=%s;\n", rankdir)
	fmt.Fprintf(&dot, "  node [shape=%s];\n", shape)
	dot.WriteString("  edge [fontsize=10];\n\n")

	dot.WriteString("  // States\n")
	for _, state := range g.graph.States() {
		if g.graph.Parent(state) == "" {
			g.writeState(&dot, state, 1)
		}
	}

	dot.WriteString("\n  // Transitions\n")
	for _, t := range g.graph.Transitions() {
		g.writeTransition(&dot, t)
	}

	dot.WriteString("}\n")

	return dot.String(), nil
}

// writeState writes a node for state, wrapped with its children in a
// cluster when it is composite
func (g *DOTGenerator) writeState(dot *strings.Builder, state string, depth int) {
	indent := strings.Repeat("  ", depth)
	children := g.graph.Children(state)

	if !g.options.ClusterComposites || !g.graph.IsComposite(state) {
		g.writeNode(dot, indent, state)
		for _, child := range children {
			g.writeState(dot, child, depth)
		}
		return
	}

	fmt.Fprintf(dot, "%ssubgraph %s {\n", indent, quote("cluster_"+state))
	fmt.Fprintf(dot, "%s  label=%s;\n", indent, quote(state))
	fmt.Fprintf(dot, "%s  style=%s;\n", indent, quote(g.options.CompositeStateStyle))
	fmt.Fprintf(dot, "%s  fillcolor=lightcyan;\n", indent)
	g.writeNode(dot, indent+"  ", state)
	for _, child := range children {
		g.writeState(dot, child, depth+1)
	}
	fmt.Fprintf(dot, "%s}\n", indent)
}

func (g *DOTGenerator) writeNode(dot *strings.Builder, indent, state string) {
	fillColor := "lightblue"
	label := state

	if g.graph.IsComposite(state) {
		fillColor = "lightcyan"
		if s, ok := g.graph.State(state); ok {
			if c, ok := s.(hsm.CompositeState); ok && c.InitialState() != "" {
				label += "\\n[initial: " + c.InitialState() + "]"
			}
		}
	}
	if state == g.initial {
		fillColor = "lightgreen"
		label += "\\n(initial)"
	}

	fmt.Fprintf(dot, "%s%s [style=\"filled\" fillcolor=%s label=%s];\n",
		indent, quote(state), fillColor, quote(label))
}

func (g *DOTGenerator) writeTransition(dot *strings.Builder, t hsm.Transition) {
	var label []string
	if g.options.ShowTriggers {
		if tr, ok := t.(interface{ Trigger() string }); ok && tr.Trigger() != "" {
			label = append(label, tr.Trigger())
		}
	}
	if g.options.ShowPriorities && t.Priority() != 0 {
		label = append(label, fmt.Sprintf("[p=%d]", t.Priority()))
	}

	style := ""
	if !g.graph.HasState(t.Target()) || !g.graph.HasState(t.Source()) {
		style = " style=dashed color=red"
	}

	if len(label) == 0 {
		fmt.Fprintf(dot, "  %s -> %s [label=\"\"%s];\n", quote(t.Source()), quote(t.Target()), style)
		return
	}
	fmt.Fprintf(dot, "  %s -> %s [label=%s%s];\n",
		quote(t.Source()), quote(t.Target()), quote(strings.Join(label, " ")), style)
}

// quote returns s as a DOT quoted identifier
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the graph by piping the DOT output through the
// Graphviz dot command
func (g *DOTGenerator) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

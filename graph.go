package hsm

import (
	"fmt"
	"slices"
)

// Graph owns the structural topology of a machine: the state arena,
// containment edges and the transition index keyed by source state.
type Graph struct {
	states      map[string]State
	order       []string
	parents     map[string]string
	children    map[string][]string
	transitions map[string][]Transition
	sources     []string
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		states:      make(map[string]State),
		parents:     make(map[string]string),
		children:    make(map[string][]string),
		transitions: make(map[string][]Transition),
	}
}

// AddState registers a state, optionally contained by parent.
//
// Registering a name again replaces the state value and moves its
// containment edge. Cycles are not checked here; Validate reports them.
func (g *Graph) AddState(state State, parent string) error {
	if state == nil {
		return NewArgumentError("AddState", "state", "state is nil", nil)
	}
	name := state.Name()
	if name == "" {
		return NewArgumentError("AddState", "state", "state name is empty", nil)
	}
	if parent != "" {
		if _, ok := g.states[parent]; !ok {
			return NewArgumentError("AddState", parent, "parent is not registered", ErrStateNotFound)
		}
	}

	if _, exists := g.states[name]; !exists {
		g.order = append(g.order, name)
	}
	g.states[name] = state

	if old, ok := g.parents[name]; ok && old != parent {
		g.children[old] = slices.DeleteFunc(g.children[old], func(c string) bool { return c == name })
		delete(g.parents, name)
	}
	if parent != "" {
		if _, ok := g.parents[name]; !ok {
			g.parents[name] = parent
			g.children[parent] = append(g.children[parent], name)
		}
	}
	return nil
}

// AddTransition indexes a transition by its source state
func (g *Graph) AddTransition(t Transition) {
	if t == nil {
		return
	}
	source := t.Source()
	if _, ok := g.transitions[source]; !ok {
		g.sources = append(g.sources, source)
	}
	g.transitions[source] = append(g.transitions[source], t)
}

// ValidTransitions returns the transitions from state whose guards accept
// event, in registration order.
func (g *Graph) ValidTransitions(state string, event Event) []Transition {
	var valid []Transition
	for _, t := range g.transitions[state] {
		if safeGuard(t, event) {
			valid = append(valid, t)
		}
	}
	return valid
}

// Ancestors returns the containers of state from the innermost outwards
func (g *Graph) Ancestors(state string) []string {
	var ancestors []string
	seen := map[string]bool{state: true}
	for parent, ok := g.parents[state]; ok; parent, ok = g.parents[parent] {
		if seen[parent] {
			break
		}
		seen[parent] = true
		ancestors = append(ancestors, parent)
	}
	return ancestors
}

// State returns the registered state with the given name
func (g *Graph) State(name string) (State, bool) {
	s, ok := g.states[name]
	return s, ok
}

// HasState reports whether name is registered
func (g *Graph) HasState(name string) bool {
	_, ok := g.states[name]
	return ok
}

// States returns all registered state names in registration order
func (g *Graph) States() []string {
	return slices.Clone(g.order)
}

// Parent returns the container of state, or "" for a root state
func (g *Graph) Parent(state string) string {
	return g.parents[state]
}

// Children returns the contained states of a composite in registration order
func (g *Graph) Children(state string) []string {
	return slices.Clone(g.children[state])
}

// Transitions returns every registered transition grouped by source,
// sources in first-registration order.
func (g *Graph) Transitions() []Transition {
	var all []Transition
	for _, source := range g.sources {
		all = append(all, g.transitions[source]...)
	}
	return all
}

// TransitionsFrom returns the transitions registered for a source state
func (g *Graph) TransitionsFrom(state string) []Transition {
	return slices.Clone(g.transitions[state])
}

// IsComposite reports whether name is registered as a composite state
func (g *Graph) IsComposite(name string) bool {
	s, ok := g.states[name]
	return ok && IsComposite(s)
}

// Validate returns a human-readable list of structural problems
func (g *Graph) Validate() []string {
	var problems []string

	for _, t := range g.Transitions() {
		if !g.HasState(t.Source()) {
			problems = append(problems, fmt.Sprintf("transition %s -> %s: source state %q is not registered", t.Source(), t.Target(), t.Source()))
		}
		if !g.HasState(t.Target()) {
			problems = append(problems, fmt.Sprintf("transition %s -> %s: target state %q is not registered", t.Source(), t.Target(), t.Target()))
		}
	}

	for _, name := range g.order {
		composite, ok := g.states[name].(CompositeState)
		if !ok {
			continue
		}
		initial := composite.InitialState()
		switch {
		case initial == "":
			problems = append(problems, fmt.Sprintf("composite state %q has no initial state", name))
		case !g.HasState(initial):
			problems = append(problems, fmt.Sprintf("composite state %q: initial state %q is not registered", name, initial))
		}
	}

	problems = append(problems, g.detectAllCycles()...)
	return problems
}

// detectAllCycles walks containment from every state so that cycles with no
// root are found too. Each cycle is reported once.
func (g *Graph) detectAllCycles() []string {
	var cycles []string
	visited := make(map[string]bool)
	for _, name := range g.order {
		if visited[name] {
			continue
		}
		cycles = append(cycles, g.walkContainment(name, visited)...)
	}
	return cycles
}

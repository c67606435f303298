// Package definition loads state machine definitions from YAML documents
// and builds runnable machines from them.
//
// A document declares the state tree, the transitions between states and
// optional regions, which attach a nested machine to a composite state:
//
//	name: player
//	initial: stopped
//	states:
//	  - name: stopped
//	  - name: active
//	    initial: playing
//	    states:
//	      - name: playing
//	      - name: paused
//	transitions:
//	  - {from: stopped, to: active, on: play}
//	  - {from: playing, to: paused, on: pause, priority: 2}
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/hsm"
)

// Definition describes a machine
type Definition struct {
	Name        string       `yaml:"name"`
	Initial     string       `yaml:"initial"`
	States      []State      `yaml:"states"`
	Transitions []Transition `yaml:"transitions"`
	Regions     []Region     `yaml:"regions"`
}

// State describes a state. A state with an initial child or nested states
// is composite.
type State struct {
	Name    string  `yaml:"name"`
	Initial string  `yaml:"initial"`
	States  []State `yaml:"states"`
}

// Transition describes a transition. An empty On matches every event.
type Transition struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	On       string `yaml:"on"`
	Priority int    `yaml:"priority"`
}

// Region attaches a nested machine to a composite state
type Region struct {
	Composite string     `yaml:"composite"`
	Machine   Definition `yaml:"machine"`
}

// IsComposite reports whether the state contains other states
func (s State) IsComposite() bool {
	return s.Initial != "" || len(s.States) > 0
}

// Parse decodes a YAML definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("definition is empty")
		}
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	return &def, nil
}

// Load reads and parses the definition file at path
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Validate checks the document itself: names, the initial state and region
// attachments. Transition endpoints and composite initial children are left
// to the machine, which reports them when it starts.
func (d *Definition) Validate() error {
	if problems := d.problems(""); len(problems) > 0 {
		return hsm.NewValidationError(problems)
	}
	return nil
}

func (d *Definition) problems(prefix string) []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, prefix+fmt.Sprintf(format, args...))
	}

	if len(d.States) == 0 {
		report("no states declared")
	}

	declared := make(map[string]State)
	d.walk(func(s State, _ string) {
		switch {
		case s.Name == "":
			report("state with empty name")
		case declared[s.Name].Name != "":
			report("state %q declared more than once", s.Name)
		default:
			declared[s.Name] = s
		}
	})

	switch {
	case d.Initial == "":
		report("initial state is not set")
	case declared[d.Initial].Name == "":
		report("initial state %q is not declared", d.Initial)
	}

	for i, t := range d.Transitions {
		if t.From == "" || t.To == "" {
			report("transition %d: from and to are required", i)
		}
	}

	taken := make(map[string]bool, len(declared))
	for name := range declared {
		taken[name] = true
	}
	attached := make(map[string]bool)
	for _, r := range d.Regions {
		s, ok := declared[r.Composite]
		switch {
		case r.Composite == "":
			report("region with empty composite")
			continue
		case !ok:
			report("region %q: composite is not declared", r.Composite)
		case !s.IsComposite():
			report("region %q: state is not composite", r.Composite)
		case attached[r.Composite]:
			report("region %q: attached more than once", r.Composite)
		}
		attached[r.Composite] = true
		problems = append(problems, r.Machine.problems(fmt.Sprintf("%sregion %q: ", prefix, r.Composite))...)

		// Region states are flattened into this machine under the composite.
		for _, name := range r.Machine.stateNames() {
			if name == r.Composite || name == "" {
				continue
			}
			if taken[name] {
				report("region %q: state %q is already declared", r.Composite, name)
				continue
			}
			taken[name] = true
		}
	}

	return problems
}

// stateNames returns every state a built machine knows, including the
// states of its regions
func (d *Definition) stateNames() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	d.walk(func(s State, _ string) { add(s.Name) })
	for _, r := range d.Regions {
		for _, name := range r.Machine.stateNames() {
			add(name)
		}
	}
	return names
}

// walk visits every declared state depth-first, parents before children
func (d *Definition) walk(fn func(s State, parent string)) {
	var visit func(states []State, parent string)
	visit = func(states []State, parent string) {
		for _, s := range states {
			fn(s, parent)
			visit(s.States, s.Name)
		}
	}
	visit(d.States, "")
}

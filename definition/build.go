package definition

import (
	"fmt"

	"github.com/anggasct/hsm"
)

// Build validates the document and assembles a machine from it. Region
// machines are built with the same options, so hooks and loggers observe
// them too. The machine is returned stopped.
func (d *Definition) Build(opts ...hsm.Option) (*hsm.CompositeMachine, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d.build(opts)
}

func (d *Definition) build(opts []hsm.Option) (*hsm.CompositeMachine, error) {
	states := make(map[string]hsm.State)
	d.walk(func(s State, _ string) {
		states[s.Name] = newState(s)
	})

	m := hsm.NewCompositeMachine(states[d.Initial], opts...)

	var err error
	d.walk(func(s State, parent string) {
		if err != nil {
			return
		}
		err = m.AddState(states[s.Name], parent)
	})
	if err != nil {
		return nil, fmt.Errorf("machine %q: %w", d.Name, err)
	}

	for _, t := range d.Transitions {
		m.AddTransition(hsm.NewTransition(t.From, t.To).On(t.On).WithPriority(t.Priority))
	}

	for _, r := range d.Regions {
		sub, err := r.Machine.build(opts)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", r.Composite, err)
		}
		if err := m.AddSubmachine(states[r.Composite], sub); err != nil {
			return nil, fmt.Errorf("region %q: %w", r.Composite, err)
		}
	}

	return m, nil
}

func newState(s State) hsm.State {
	if s.IsComposite() {
		return hsm.NewCompositeState(s.Name).WithInitial(s.Initial)
	}
	return hsm.NewState(s.Name)
}

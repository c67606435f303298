package hsm

import "errors"

// Submachine is an independently operating machine nested in a composite
// state. Both *Machine and *CompositeMachine satisfy it.
type Submachine interface {
	Start() error
	Stop() error
	Reset() error
	ProcessEvent(event Event) (bool, error)
	KnownStates() []State
}

// CompositeMachine is a Machine whose composite states may own submachines.
//
// Events are offered to the submachine of the current composite first; only
// when it does not handle them does the parent evaluate its own transitions.
// Each submachine keeps sole authority over its own current state and
// history; the parent graph only receives a flattened structural view.
type CompositeMachine struct {
	*Machine
	submachines map[string]Submachine
	regions     []string
}

// NewCompositeMachine creates a composite machine
func NewCompositeMachine(initial State, opts ...Option) *CompositeMachine {
	cm := &CompositeMachine{
		Machine:     NewMachine(initial, opts...),
		submachines: make(map[string]Submachine),
	}
	cm.resolve = cm.regionEntry
	cm.regionEnter = cm.enterRegion
	cm.regionExit = cm.exitRegion
	return cm
}

// AddSubmachine attaches sub to a registered composite state and registers
// every state known to sub under it in the parent graph. Names already
// registered in the parent, other than the composite itself, are rejected.
func (cm *CompositeMachine) AddSubmachine(state State, sub Submachine) error {
	if state == nil {
		return NewArgumentError("AddSubmachine", "state", "state is nil", nil)
	}
	name := state.Name()
	if !IsComposite(state) {
		return NewArgumentError("AddSubmachine", name, "state must be a composite state", ErrNotComposite)
	}
	if !cm.graph.HasState(name) {
		return NewArgumentError("AddSubmachine", name, "composite state is not registered", ErrStateNotFound)
	}
	if sub == nil {
		return NewArgumentError("AddSubmachine", name, "submachine is nil", nil)
	}

	states := sub.KnownStates()
	for _, s := range states {
		if s == nil || s.Name() == "" {
			return NewArgumentError("AddSubmachine", name, "submachine has an unnamed state", nil)
		}
		if s.Name() != name && cm.graph.HasState(s.Name()) {
			return NewArgumentError("AddSubmachine", s.Name(), "state is already registered in the parent machine", ErrDuplicateState)
		}
	}

	for _, s := range states {
		if s.Name() == name {
			continue
		}
		if err := cm.graph.AddState(s, name); err != nil {
			return err
		}
	}

	if _, exists := cm.submachines[name]; !exists {
		cm.regions = append(cm.regions, name)
	}
	cm.submachines[name] = sub
	return nil
}

// Submachine returns the submachine attached to a composite state
func (cm *CompositeMachine) Submachine(composite string) (Submachine, bool) {
	sub, ok := cm.submachines[composite]
	return sub, ok
}

// ProcessEvent offers event to the active region first, then to the parent
func (cm *CompositeMachine) ProcessEvent(event Event) (bool, error) {
	if !cm.running {
		return false, nil
	}
	current := cm.cursor.current
	if sub, ok := cm.submachines[current]; ok && cm.graph.IsComposite(current) {
		handled, err := sub.ProcessEvent(event)
		if err != nil {
			return false, err
		}
		if handled {
			return true, nil
		}
	}
	return cm.Machine.ProcessEvent(event)
}

// Reset resets the parent and every submachine
func (cm *CompositeMachine) Reset() error {
	var errs []error
	errs = append(errs, cm.Machine.Reset())
	for _, name := range cm.regions {
		errs = append(errs, cm.submachines[name].Reset())
	}
	return errors.Join(errs...)
}

// regionEntry maps an entry state owned by a region to the region's
// composite. Leaf activation inside a region belongs to the submachine.
func (cm *CompositeMachine) regionEntry(entry string) string {
	owner := entry
	for _, ancestor := range cm.graph.Ancestors(entry) {
		if _, ok := cm.submachines[ancestor]; ok {
			owner = ancestor
		}
	}
	return owner
}

func (cm *CompositeMachine) enterRegion(state State) error {
	if sub, ok := cm.submachines[state.Name()]; ok {
		return sub.Start()
	}
	return nil
}

func (cm *CompositeMachine) exitRegion(state State) error {
	if sub, ok := cm.submachines[state.Name()]; ok {
		return sub.Stop()
	}
	return nil
}

package hsm

// State represents a vertex of the state graph.
//
// States carry no parent pointers: containment is recorded by the Graph that
// owns them, so the same State value can be registered in a submachine and
// flattened into its parent's graph.
type State interface {
	Name() string
	OnEnter() error
	OnExit() error
}

// CompositeState represents a state that contains child states.
// Its child set lives in the owning Graph (see Graph.Children).
type CompositeState interface {
	State
	// InitialState returns the name of the designated initial child, or ""
	// when none has been designated yet.
	InitialState() string
}

// CallbackFunc is a side-effecting entry or exit callback
type CallbackFunc func() error

// BasicState is the default State implementation
type BasicState struct {
	name    string
	onEnter CallbackFunc
	onExit  CallbackFunc
}

// NewState creates a new leaf state
func NewState(name string) *BasicState {
	return &BasicState{name: name}
}

// Name returns the state identifier
func (s *BasicState) Name() string {
	return s.name
}

// OnEnter runs the entry callback, if any
func (s *BasicState) OnEnter() error {
	if s.onEnter == nil {
		return nil
	}
	return s.onEnter()
}

// OnExit runs the exit callback, if any
func (s *BasicState) OnExit() error {
	if s.onExit == nil {
		return nil
	}
	return s.onExit()
}

// WithEntry sets the entry callback
func (s *BasicState) WithEntry(fn CallbackFunc) *BasicState {
	s.onEnter = fn
	return s
}

// WithExit sets the exit callback
func (s *BasicState) WithExit(fn CallbackFunc) *BasicState {
	s.onExit = fn
	return s
}

func (s *BasicState) String() string {
	return s.name
}

// BasicCompositeState is the default CompositeState implementation
type BasicCompositeState struct {
	BasicState
	initial string
}

// NewCompositeState creates a new composite state
func NewCompositeState(name string) *BasicCompositeState {
	return &BasicCompositeState{BasicState: BasicState{name: name}}
}

// InitialState returns the designated initial child
func (s *BasicCompositeState) InitialState() string {
	return s.initial
}

// WithInitial designates the initial child by name
func (s *BasicCompositeState) WithInitial(name string) *BasicCompositeState {
	s.initial = name
	return s
}

// WithEntry sets the entry callback
func (s *BasicCompositeState) WithEntry(fn CallbackFunc) *BasicCompositeState {
	s.onEnter = fn
	return s
}

// WithExit sets the exit callback
func (s *BasicCompositeState) WithExit(fn CallbackFunc) *BasicCompositeState {
	s.onExit = fn
	return s
}

// IsComposite reports whether a state is a CompositeState
func IsComposite(s State) bool {
	_, ok := s.(CompositeState)
	return ok
}

func stateName(s State) string {
	if s == nil {
		return ""
	}
	return s.Name()
}

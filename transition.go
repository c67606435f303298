package hsm

// Transition connects a source state to a target state
type Transition interface {
	Source() string
	Target() string
	// EvaluateGuards reports whether the transition may fire for event.
	EvaluateGuards(event Event) bool
	// ExecuteActions runs the transition's action sequence in order and
	// stops at the first error.
	ExecuteActions(event Event) error
	Priority() int
}

// GuardFunc represents a guard condition function
type GuardFunc func(event Event) bool

// ActionFunc represents a transition action
type ActionFunc func(event Event) error

// BasicTransition is the default Transition implementation
type BasicTransition struct {
	source   string
	target   string
	trigger  string
	guards   []GuardFunc
	actions  []ActionFunc
	priority int
}

// NewTransition creates a new transition
func NewTransition(source, target string) *BasicTransition {
	return &BasicTransition{
		source: source,
		target: target,
	}
}

// On restricts the transition to events whose EventName equals name
func (t *BasicTransition) On(name string) *BasicTransition {
	t.trigger = name
	return t
}

// WithGuard adds a guard condition to the transition
func (t *BasicTransition) WithGuard(guard GuardFunc) *BasicTransition {
	t.guards = append(t.guards, guard)
	return t
}

// WithAction appends an action to the transition
func (t *BasicTransition) WithAction(action ActionFunc) *BasicTransition {
	t.actions = append(t.actions, action)
	return t
}

// WithPriority sets the transition priority; higher wins
func (t *BasicTransition) WithPriority(priority int) *BasicTransition {
	t.priority = priority
	return t
}

// Source returns the source state name
func (t *BasicTransition) Source() string {
	return t.source
}

// Target returns the target state name
func (t *BasicTransition) Target() string {
	return t.target
}

// Trigger returns the event name the transition listens to, or ""
func (t *BasicTransition) Trigger() string {
	return t.trigger
}

// Priority returns the transition priority
func (t *BasicTransition) Priority() int {
	return t.priority
}

// EvaluateGuards checks the trigger and every guard
func (t *BasicTransition) EvaluateGuards(event Event) bool {
	if t.trigger != "" && EventName(event) != t.trigger {
		return false
	}
	for _, guard := range t.guards {
		if guard != nil && !guard(event) {
			return false
		}
	}
	return true
}

// ExecuteActions runs the actions in registration order
func (t *BasicTransition) ExecuteActions(event Event) error {
	for _, action := range t.actions {
		if action == nil {
			continue
		}
		if err := action(event); err != nil {
			return err
		}
	}
	return nil
}

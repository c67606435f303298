package hsm

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Validator applies policy checks beyond the structural graph checks.
// It is invoked once per Start.
type Validator interface {
	Validate(m *Machine) error
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(m *Machine) error

// Validate implements Validator
func (f ValidatorFunc) Validate(m *Machine) error {
	return f(m)
}

// ErrorRecoveryStrategy absorbs errors raised while a machine moves between
// states. Once Recover returns, the error is considered handled.
type ErrorRecoveryStrategy interface {
	Recover(err error, m *Machine)
}

// RecoveryFunc adapts a function to the ErrorRecoveryStrategy interface
type RecoveryFunc func(err error, m *Machine)

// Recover implements ErrorRecoveryStrategy
func (f RecoveryFunc) Recover(err error, m *Machine) {
	f(err, m)
}

// NoopRecovery absorbs errors without taking any action
type NoopRecovery struct{}

// Recover implements ErrorRecoveryStrategy
func (NoopRecovery) Recover(error, *Machine) {}

// Option configures a Machine
type Option func(*Machine)

// WithValidator sets the external validator run on Start
func WithValidator(v Validator) Option {
	return func(m *Machine) {
		m.validator = v
	}
}

// WithHooks registers hooks
func WithHooks(hooks ...Hook) Option {
	return func(m *Machine) {
		for _, h := range hooks {
			m.hooks.Add(h)
		}
	}
}

// WithRecovery attaches an error recovery strategy. Without one, errors
// are returned to the caller.
func WithRecovery(s ErrorRecoveryStrategy) Option {
	return func(m *Machine) {
		m.recovery = s
	}
}

// WithLogger sets the structured logger used for lifecycle and dispatch logs
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Machine is a hierarchical state machine.
//
// A Machine is not safe for concurrent use: callers must serialize Start,
// Stop, Reset and ProcessEvent. History reads (HistoryState, History) may
// run concurrently with event processing.
type Machine struct {
	id        string
	graph     *Graph
	cursor    *cursor
	validator Validator
	hooks     *HookManager
	recovery  ErrorRecoveryStrategy
	logger    *slog.Logger
	running   bool

	// Set by CompositeMachine.
	resolve     func(entry string) string
	regionEnter func(State) error
	regionExit  func(State) error
}

// NewMachine creates a machine whose initial state is registered as a root state
func NewMachine(initial State, opts ...Option) *Machine {
	m := &Machine{
		id:     uuid.New().String(),
		graph:  NewGraph(),
		cursor: newCursor(stateName(initial)),
		hooks:  NewHookManager(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if initial != nil {
		_ = m.graph.AddState(initial, "")
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the unique machine instance id
func (m *Machine) ID() string {
	return m.id
}

// Graph returns the structural graph of the machine
func (m *Machine) Graph() *Graph {
	return m.graph
}

// AddState registers a state, contained by parent when parent is not empty
func (m *Machine) AddState(state State, parent string) error {
	return m.graph.AddState(state, parent)
}

// AddTransition registers a transition
func (m *Machine) AddTransition(t Transition) {
	m.graph.AddTransition(t)
}

// AddHook registers a hook
func (m *Machine) AddHook(h Hook) {
	m.hooks.Add(h)
}

// RemoveHook unregisters a hook
func (m *Machine) RemoveHook(h Hook) {
	m.hooks.Remove(h)
}

// IsRunning reports whether the machine has been started and not stopped
func (m *Machine) IsRunning() bool {
	return m.running
}

// CurrentState returns the current state, or nil when there is none
func (m *Machine) CurrentState() State {
	s, ok := m.graph.State(m.cursor.current)
	if !ok {
		return nil
	}
	return s
}

// InitialState returns the state the machine was constructed with
func (m *Machine) InitialState() State {
	s, _ := m.graph.State(m.cursor.initial)
	return s
}

// KnownStates returns every registered state in registration order
func (m *Machine) KnownStates() []State {
	names := m.graph.States()
	states := make([]State, 0, len(names))
	for _, name := range names {
		if s, ok := m.graph.State(name); ok {
			states = append(states, s)
		}
	}
	return states
}

// HistoryState returns the leaf that was active when composite was last exited
func (m *Machine) HistoryState(composite string) (State, bool) {
	name, ok := m.cursor.historyState(composite)
	if !ok {
		return nil, false
	}
	return m.graph.State(name)
}

// History returns a snapshot of every history record, ordered by composite
func (m *Machine) History() []HistoryRecord {
	return m.cursor.snapshot()
}

// DetectCycles reports containment cycles reachable from the initial state
func (m *Machine) DetectCycles() []string {
	return DetectCycles(m.graph, m.cursor.initial)
}

// Start validates the machine and enters the resolved entry state.
// Starting a running machine is a no-op.
func (m *Machine) Start() error {
	if m.running {
		return nil
	}

	target := m.entryState()

	if problems := m.problems(); len(problems) > 0 {
		m.logger.Warn("machine validation failed", "machine", m.id, "problems", problems)
		return NewValidationError(problems)
	}
	if m.validator != nil {
		if err := m.validator.Validate(m); err != nil {
			m.logger.Warn("machine rejected by validator", "machine", m.id, "err", err)
			return &ValidationError{Err: err}
		}
	}

	state, _ := m.graph.State(target)
	m.cursor.current = target
	if err := m.enter(state); err != nil {
		if terr := m.failed(NewTransitionError("", target, nil, StageEntry, err)); terr != nil {
			m.cursor.current = ""
			return terr
		}
	}

	m.running = true
	m.logger.Info("machine started", "machine", m.id, "state", target)
	return nil
}

// Stop records history for the active leaf, exits the current state and
// leaves the machine stopped. History is kept. Stopping a stopped machine
// is a no-op.
func (m *Machine) Stop() error {
	if !m.running {
		return nil
	}

	var err error
	if state := m.CurrentState(); state != nil {
		m.recordHistory(m.activeLeaf())
		if exitErr := m.exit(state); exitErr != nil {
			err = m.failed(NewTransitionError(state.Name(), "", nil, StageExit, exitErr))
		}
	}

	m.cursor.current = ""
	m.running = false
	m.logger.Info("machine stopped", "machine", m.id)
	return err
}

// Reset stops the machine, clears all history and reverts to the initial state
func (m *Machine) Reset() error {
	err := m.Stop()
	m.cursor.resetHistory()
	m.logger.Info("machine reset", "machine", m.id)
	return err
}

// ProcessEvent fires the highest-priority transition whose guards accept
// event. It returns false without error when the machine is stopped or no
// transition applies.
//
// Transitions are looked up from the active leaf first and then from each
// of its containers, innermost first. Among candidates declared on the same
// state, the highest priority wins and ties go to the earliest registered.
func (m *Machine) ProcessEvent(event Event) (bool, error) {
	if !m.running || m.cursor.current == "" {
		return false, nil
	}

	leaf := m.activeLeaf()
	t := m.selectTransition(leaf, event)
	if t == nil {
		m.logger.Debug("event not handled", "machine", m.id, "state", leaf, "event", EventName(event))
		return false, nil
	}

	if err := m.executeTransition(t, leaf, event); err != nil {
		return false, err
	}
	return true, nil
}

// activeLeaf resolves the current state to a leaf. A composite current
// state stands for its designated initial child, followed down through
// nested composites. The same leaf drives both matching and history.
func (m *Machine) activeLeaf() string {
	name := m.cursor.current
	seen := make(map[string]bool)
	for !seen[name] {
		seen[name] = true
		composite, ok := m.graph.states[name].(CompositeState)
		if !ok {
			return name
		}
		initial := composite.InitialState()
		if initial == "" || !m.graph.HasState(initial) {
			return name
		}
		name = initial
	}
	return name
}

func (m *Machine) selectTransition(leaf string, event Event) Transition {
	sources := append([]string{leaf}, m.graph.Ancestors(leaf)...)
	for _, source := range sources {
		var selected Transition
		for _, t := range m.graph.ValidTransitions(source, event) {
			if selected == nil || t.Priority() > selected.Priority() {
				selected = t
			}
		}
		if selected != nil {
			return selected
		}
	}
	return nil
}

func (m *Machine) executeTransition(t Transition, leaf string, event Event) error {
	from := m.cursor.current
	to := t.Target()

	target, ok := m.graph.State(to)
	if !ok {
		return m.failed(NewTransitionError(from, to, event, StageEntry, fmt.Errorf("%w: %q", ErrStateNotFound, to)))
	}

	m.recordHistory(leaf)

	if source := m.CurrentState(); source != nil {
		if err := m.exit(source); err != nil {
			return m.failed(NewTransitionError(from, to, event, StageExit, err))
		}
	}

	if err := safeCall(func() error { return t.ExecuteActions(event) }); err != nil {
		return m.failed(NewTransitionError(from, to, event, StageAction, err))
	}

	m.cursor.current = to
	if err := m.enter(target); err != nil {
		return m.failed(NewTransitionError(from, to, event, StageEntry, err))
	}

	m.logger.Debug("transition", "machine", m.id, "from", from, "to", to, "event", EventName(event))
	return nil
}

// recordHistory stores leaf for every composite that contains it
func (m *Machine) recordHistory(leaf string) {
	for _, ancestor := range m.graph.Ancestors(leaf) {
		if m.graph.IsComposite(ancestor) {
			m.cursor.recordExit(ancestor, leaf)
		}
	}
}

// entryState resolves where Start enters the machine
func (m *Machine) entryState() string {
	entry := m.resumeState()
	if m.resolve != nil {
		return m.resolve(entry)
	}
	return entry
}

func (m *Machine) resumeState() string {
	name := m.cursor.current
	if name == "" {
		name = m.cursor.initial
	}

	if m.graph.IsComposite(name) {
		if leaf, ok := m.resumable(name); ok {
			return leaf
		}
	}

	if parent := m.graph.Parent(name); parent != "" && m.graph.IsComposite(parent) {
		if leaf, ok := m.resumable(parent); ok {
			return leaf
		}
		composite, _ := m.graph.states[parent].(CompositeState)
		if initial := composite.InitialState(); initial != "" {
			return initial
		}
	}

	return m.cursor.initial
}

func (m *Machine) resumable(composite string) (string, bool) {
	leaf, ok := m.cursor.historyState(composite)
	if !ok || !m.graph.HasState(leaf) {
		return "", false
	}
	return leaf, true
}

func (m *Machine) problems() []string {
	var problems []string
	switch {
	case m.cursor.initial == "":
		problems = append(problems, "machine has no initial state")
	case !m.graph.HasState(m.cursor.initial):
		problems = append(problems, fmt.Sprintf("initial state %q is not registered", m.cursor.initial))
	}
	return append(problems, m.graph.Validate()...)
}

func (m *Machine) enter(state State) error {
	if state == nil {
		return nil
	}
	if err := safeCall(state.OnEnter); err != nil {
		return err
	}
	m.hooks.NotifyEnter(state)
	if m.regionEnter != nil {
		return m.regionEnter(state)
	}
	return nil
}

func (m *Machine) exit(state State) error {
	if m.regionExit != nil {
		if err := m.regionExit(state); err != nil {
			return err
		}
	}
	if err := safeCall(state.OnExit); err != nil {
		return err
	}
	m.hooks.NotifyExit(state)
	return nil
}

// failed reports err to every hook and to the recovery strategy. It returns
// nil when a strategy absorbed the error.
func (m *Machine) failed(err *TransitionError) error {
	m.logger.Error("transition failed", "machine", m.id, "from", err.From, "to", err.To, "stage", string(err.Stage), "err", err.Err)
	m.hooks.NotifyError(err)
	if m.recovery != nil {
		m.recovery.Recover(err, m)
		return nil
	}
	return err
}

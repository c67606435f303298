package hsm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingHook captures every notification for assertions
type recordingHook struct {
	mu      sync.Mutex
	entered []string
	exited  []string
	errs    []error
}

func newRecordingHook() *recordingHook {
	return &recordingHook{}
}

func (h *recordingHook) OnEnter(state State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entered = append(h.entered, state.Name())
}

func (h *recordingHook) OnExit(state State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exited = append(h.exited, state.Name())
}

func (h *recordingHook) OnError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingHook) Entered() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entered...)
}

func (h *recordingHook) Exited() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.exited...)
}

func (h *recordingHook) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

// newFlatMachine builds Idle --start--> Running --finish--> Done
func newFlatMachine(t *testing.T, opts ...Option) *Machine {
	t.Helper()
	m := NewMachine(NewState("Idle"), opts...)
	require.NoError(t, m.AddState(NewState("Running"), ""))
	require.NoError(t, m.AddState(NewState("Done"), ""))
	m.AddTransition(NewTransition("Idle", "Running").On("start").WithPriority(1))
	m.AddTransition(NewTransition("Running", "Done").On("finish").WithPriority(1))
	return m
}

// newNestedMachine builds a machine whose initial state is the composite
// Active{Idle, Running} with Done outside of it:
//
//	Idle --start--> Running --finish--> Done
//	Active --abort--> Done
func newNestedMachine(t *testing.T, opts ...Option) *Machine {
	t.Helper()
	active := NewCompositeState("Active").WithInitial("Idle")
	m := NewMachine(active, opts...)
	require.NoError(t, m.AddState(NewState("Idle"), "Active"))
	require.NoError(t, m.AddState(NewState("Running"), "Active"))
	require.NoError(t, m.AddState(NewState("Done"), ""))
	m.AddTransition(NewTransition("Idle", "Running").On("start").WithPriority(1))
	m.AddTransition(NewTransition("Running", "Done").On("finish").WithPriority(1))
	m.AddTransition(NewTransition("Active", "Done").On("abort"))
	return m
}

func currentName(m *Machine) string {
	return stateName(m.CurrentState())
}

func process(t *testing.T, m interface {
	ProcessEvent(Event) (bool, error)
}, event Event) bool {
	t.Helper()
	handled, err := m.ProcessEvent(event)
	require.NoError(t, err)
	return handled
}

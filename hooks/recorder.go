package hooks

import (
	"sync"
	"time"

	"github.com/anggasct/hsm"
)

// StepKind identifies a recorded notification
type StepKind string

const (
	StepEnter StepKind = "enter"
	StepExit  StepKind = "exit"
	StepError StepKind = "error"
)

// Step is a single recorded notification
type Step struct {
	Kind      StepKind
	State     string
	Err       error
	Timestamp time.Time
}

// HistoryRecorder keeps an ordered, bounded log of every notification.
// It is safe for concurrent use.
type HistoryRecorder struct {
	mu    sync.RWMutex
	steps []Step
	limit int
}

// NewHistoryRecorder creates a recorder keeping at most limit steps.
// A limit of zero or less keeps every step.
func NewHistoryRecorder(limit int) *HistoryRecorder {
	return &HistoryRecorder{limit: limit}
}

// OnEnter implements hsm.Hook
func (r *HistoryRecorder) OnEnter(state hsm.State) {
	r.record(Step{Kind: StepEnter, State: state.Name()})
}

// OnExit implements hsm.Hook
func (r *HistoryRecorder) OnExit(state hsm.State) {
	r.record(Step{Kind: StepExit, State: state.Name()})
}

// OnError implements hsm.Hook
func (r *HistoryRecorder) OnError(err error) {
	r.record(Step{Kind: StepError, Err: err})
}

func (r *HistoryRecorder) record(step Step) {
	step.Timestamp = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
	if r.limit > 0 && len(r.steps) > r.limit {
		r.steps = append([]Step(nil), r.steps[len(r.steps)-r.limit:]...)
	}
}

// Steps returns a copy of the recorded steps, oldest first
func (r *HistoryRecorder) Steps() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Step(nil), r.steps...)
}

// Path returns the names of the entered states, oldest first
func (r *HistoryRecorder) Path() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var path []string
	for _, step := range r.steps {
		if step.Kind == StepEnter {
			path = append(path, step.State)
		}
	}
	return path
}

// Errors returns the recorded errors, oldest first
func (r *HistoryRecorder) Errors() []error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for _, step := range r.steps {
		if step.Kind == StepError {
			errs = append(errs, step.Err)
		}
	}
	return errs
}

// Clear drops every recorded step
func (r *HistoryRecorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

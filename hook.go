package hsm

import (
	"fmt"
	"slices"
)

// Hook observes a machine's state entries, exits and errors
type Hook interface {
	OnEnter(state State)
	OnExit(state State)
	OnError(err error)
}

// AsyncHook marks a hook as asynchronous. Machines never call OnEnter on
// asynchronous hooks from their synchronous entry path; such hooks still
// receive exit and error notifications.
type AsyncHook interface {
	Hook
	Async() bool
}

// BaseHook provides no-op implementations for embedding
type BaseHook struct{}

// OnEnter implements Hook
func (BaseHook) OnEnter(State) {}

// OnExit implements Hook
func (BaseHook) OnExit(State) {}

// OnError implements Hook
func (BaseHook) OnError(error) {}

// HookFuncs adapts optional functions to the Hook interface.
// Nil fields are no-ops.
type HookFuncs struct {
	Enter func(state State)
	Exit  func(state State)
	Error func(err error)
}

// OnEnter implements Hook
func (h HookFuncs) OnEnter(state State) {
	if h.Enter != nil {
		h.Enter(state)
	}
}

// OnExit implements Hook
func (h HookFuncs) OnExit(state State) {
	if h.Exit != nil {
		h.Exit(state)
	}
}

// OnError implements Hook
func (h HookFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

func isAsync(h Hook) bool {
	a, ok := h.(AsyncHook)
	return ok && a.Async()
}

// HookManager fans notifications out to registered hooks.
// A panicking hook is reported to the other hooks' OnError and never
// interrupts the machine.
type HookManager struct {
	hooks []Hook
}

// NewHookManager creates a new hook manager
func NewHookManager(hooks ...Hook) *HookManager {
	hm := &HookManager{}
	for _, h := range hooks {
		hm.Add(h)
	}
	return hm
}

// Add registers a hook
func (hm *HookManager) Add(h Hook) {
	if h == nil {
		return
	}
	hm.hooks = append(hm.hooks, h)
}

// Remove unregisters a hook
func (hm *HookManager) Remove(h Hook) {
	for i, registered := range hm.hooks {
		if sameHook(registered, h) {
			hm.hooks = slices.Delete(hm.hooks, i, i+1)
			return
		}
	}
}

// Len returns the number of registered hooks
func (hm *HookManager) Len() int {
	return len(hm.hooks)
}

// NotifyEnter notifies synchronous hooks of a state entry
func (hm *HookManager) NotifyEnter(state State) {
	hooks := slices.Clone(hm.hooks)
	for i, h := range hooks {
		if isAsync(h) {
			continue
		}
		notify(hooks, i, "OnEnter", func() { h.OnEnter(state) })
	}
}

// NotifyExit notifies all hooks of a state exit
func (hm *HookManager) NotifyExit(state State) {
	hooks := slices.Clone(hm.hooks)
	for i, h := range hooks {
		notify(hooks, i, "OnExit", func() { h.OnExit(state) })
	}
}

// NotifyError notifies all hooks of an error
func (hm *HookManager) NotifyError(err error) {
	for _, h := range slices.Clone(hm.hooks) {
		func() {
			defer func() { _ = recover() }()
			h.OnError(err)
		}()
	}
}

// notify runs fn for hooks[i] and reports a panic to every other hook
func notify(hooks []Hook, i int, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("hook panic in %s: %v", method, r)
			for j, other := range hooks {
				if j == i {
					continue
				}
				func() {
					defer func() { _ = recover() }()
					other.OnError(panicErr)
				}()
			}
		}
	}()
	fn()
}

// sameHook compares hooks without panicking on uncomparable values
func sameHook(a, b Hook) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Package hsm provides an embeddable hierarchical state machine runtime.
//
// A Machine owns a Graph of states, where composite states contain child
// states and designate an initial child, and a set of prioritized, guarded
// transitions indexed by source state. Events are processed synchronously:
// the machine resolves the active leaf, selects the highest-priority
// transition whose guards accept the event, exits the current state, runs
// the transition actions and enters the target.
//
// Every composite that contains the exited leaf remembers that exact leaf
// (deep history), so a stopped machine resumes where it left off on the next
// Start unless Reset cleared the history.
//
// A CompositeMachine additionally attaches independent submachines to its
// composite states. Events are offered to the active submachine first.
//
// Observers implement Hook; errors raised by state callbacks and actions are
// reported to every hook and then either absorbed by an
// ErrorRecoveryStrategy or returned to the caller.
//
// Basic usage:
//
//	idle := hsm.NewState("idle")
//	m := hsm.NewMachine(idle)
//	_ = m.AddState(hsm.NewState("running"), "")
//	m.AddTransition(hsm.NewTransition("idle", "running").On("start"))
//
//	if err := m.Start(); err != nil {
//		log.Fatal(err)
//	}
//	handled, err := m.ProcessEvent(hsm.NewEvent("start", nil))
package hsm

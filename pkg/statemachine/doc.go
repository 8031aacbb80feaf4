// Package statemachine provides a small, generic, table-driven finite state machine.
//
// A Machine only describes which event moves which state where. It does not store a
// current state, which lets a single Machine validate transitions for many entities
// (for example every task record owned by a queue) that each keep their own state.
//
// # Usage
//
//	type Light string
//	type Signal string
//
//	m := statemachine.MustNew(
//		statemachine.WithTransition[Light, Signal]("red", "green", "go"),
//		statemachine.WithTransition[Light, Signal]("green", "red", "halt"),
//	)
//
//	next, err := m.Fire("red", "go") // next == "green"
//
// # Error Handling
//
// Fire returns *ErrNoTransitionAvailable, detectable with IsNoTransitionAvailableError,
// when the event has no edge out of the given state. Construction fails with
// ErrNoTransitions or ErrAmbiguousTransition for invalid tables.
package statemachine

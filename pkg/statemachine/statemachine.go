package statemachine

import "fmt"

// Transition defines a state change triggered by an event.
type Transition[S comparable, E comparable] struct {
	From  S
	To    S
	Event E
}

// Machine is an immutable transition table.
// It keeps no current state: callers own the state and ask the machine where an event leads,
// so one Machine can drive any number of entities concurrently without locking.
type Machine[S comparable, E comparable] struct {
	// Nested map gives O(1) lookups: [fromState][event]toState
	transitions map[S]map[E]S
}

// Option configures a Machine during construction.
type Option[S comparable, E comparable] func(*Machine[S, E]) error

// New creates a machine from the given transitions.
func New[S comparable, E comparable](opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{transitions: make(map[S]map[E]S)}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if len(m.transitions) == 0 {
		return nil, ErrNoTransitions
	}

	return m, nil
}

// MustNew works like New but panics on invalid definitions.
// Transition tables are static, so a broken one is a programming error.
func MustNew[S comparable, E comparable](opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// WithTransition adds a single transition.
func WithTransition[S comparable, E comparable](from, to S, event E) Option[S, E] {
	return func(m *Machine[S, E]) error {
		return m.add(Transition[S, E]{From: from, To: to, Event: event})
	}
}

// WithTransitions adds the same event edge from several source states.
func WithTransitions[S comparable, E comparable](event E, to S, from ...S) Option[S, E] {
	return func(m *Machine[S, E]) error {
		for i, f := range from {
			if err := m.add(Transition[S, E]{From: f, To: to, Event: event}); err != nil {
				return fmt.Errorf("failed to add transition[%d] %v->%v on %v: %w", i, f, to, event, err)
			}
		}
		return nil
	}
}

func (m *Machine[S, E]) add(t Transition[S, E]) error {
	events, ok := m.transitions[t.From]
	if !ok {
		events = make(map[E]S)
		m.transitions[t.From] = events
	}

	if existing, ok := events[t.Event]; ok && existing != t.To {
		return ErrAmbiguousTransition
	}

	events[t.Event] = t.To
	return nil
}

// Fire returns the state reached from `from` when `event` occurs.
func (m *Machine[S, E]) Fire(from S, event E) (S, error) {
	if to, ok := m.transitions[from][event]; ok {
		return to, nil
	}
	return from, NewErrNoTransitionAvailable(from, event)
}

// CanFire reports whether event has an edge out of state.
func (m *Machine[S, E]) CanFire(from S, event E) bool {
	_, ok := m.transitions[from][event]
	return ok
}

// IsTerminal reports whether no event leads out of state.
func (m *Machine[S, E]) IsTerminal(state S) bool {
	return len(m.transitions[state]) == 0
}

// Transitions returns every edge of the machine in no particular order.
func (m *Machine[S, E]) Transitions() []Transition[S, E] {
	var out []Transition[S, E]
	for from, events := range m.transitions {
		for event, to := range events {
			out = append(out, Transition[S, E]{From: from, To: to, Event: event})
		}
	}
	return out
}

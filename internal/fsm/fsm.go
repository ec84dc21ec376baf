// Package fsm models the startup lifecycle of the device configuration.
package fsm

import "fmt"

type State string

type Event string

const (
	StatePending      State = "pending"
	StateConstructed  State = "constructed"
	StateBootstrapped State = "bootstrapped"
	StateReady        State = "ready"
	StateFailed       State = "failed"
)

const (
	EventConstruct Event = "construct"
	EventBootstrap Event = "bootstrap"
	EventValidate  Event = "validate"
	EventFail      Event = "fail"
)

// Transition returns the state reached from current on event.
// Ready and failed are terminal: configuration is never re-run in-process.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StatePending:
		switch event {
		case EventConstruct:
			return StateConstructed, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateConstructed:
		switch event {
		case EventBootstrap:
			return StateBootstrapped, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateBootstrapped:
		switch event {
		case EventValidate:
			return StateReady, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateReady, StateFailed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Terminal reports whether no further transition is possible from s.
func Terminal(s State) bool {
	return s == StateReady || s == StateFailed
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}

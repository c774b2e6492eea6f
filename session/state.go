// Package session implements the SMPP session actor: one TCP
// connection driven by a reader, a writer, and a timekeeper goroutine,
// cooperating through a State machine and a correlator.Correlator
// (spec.md §4.4).
package session

import "sync"

// State is one node of the session state machine (spec.md §4.4). The
// set is ESME-only: an SMSC-side peer state (e.g. "listening") has no
// place here.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateBinding
	StateBoundTX
	StateBoundRX
	StateBoundTRX
	StateUnbinding
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateBinding:
		return "BINDING"
	case StateBoundTX:
		return "BOUND_TX"
	case StateBoundRX:
		return "BOUND_RX"
	case StateBoundTRX:
		return "BOUND_TRX"
	case StateUnbinding:
		return "UNBINDING"
	case StateReconnecting:
		return "RECONNECTING"
	default:
		return "UNKNOWN"
	}
}

// IsBound reports whether s is one of the three bound states.
func (s State) IsBound() bool {
	return s == StateBoundTX || s == StateBoundRX || s == StateBoundTRX
}

// stateBox is a mutex-guarded State with a watch channel, letting a
// caller block until a transition happens without polling.
type stateBox struct {
	mu      sync.Mutex
	current State
	waiters []chan struct{}
}

func newStateBox(initial State) *stateBox {
	return &stateBox{current: initial}
}

func (b *stateBox) get() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *stateBox) set(s State) {
	b.mu.Lock()
	b.current = s
	waiters := b.waiters
	b.waiters = nil
	b.mu.Unlock()
	for _, w := range waiters {
		close(w)
	}
}

// watch returns a channel that closes the next time the state changes.
func (b *stateBox) watch() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.waiters = append(b.waiters, ch)
	return ch
}

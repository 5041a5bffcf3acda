// Package form holds the per-screen controllers (create, list, dashboard).
//
// A controller collects input, applies local rules, calls the API client and
// moves through an explicit State so a renderer never has to juggle flags:
//
//	Idle -> Validating -> Submitting -> Success | Failed -> Idle (Reset)
//
// Controllers are safe for concurrent use; each one owns its state.
package form

import "sync"

// Kind tags a State.
type Kind int

const (
	KindIdle Kind = iota
	KindValidating
	KindSubmitting
	KindSuccess
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindValidating:
		return "validating"
	case KindSubmitting:
		return "submitting"
	case KindSuccess:
		return "success"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is one of Idle, Validating, Submitting, Success[T] or Failed.
type State interface {
	Kind() Kind
	isState()
}

type Idle struct{}

type Validating struct{}

type Submitting struct{}

// Success carries the result the screen renders.
type Success[T any] struct {
	Result T
}

// Failed carries the message shown to the user. Field is set for field-scoped
// errors; Local is true when no request was sent.
type Failed struct {
	Field   string
	Message string
	Local   bool
	Err     error
}

func (Idle) Kind() Kind       { return KindIdle }
func (Validating) Kind() Kind { return KindValidating }
func (Submitting) Kind() Kind { return KindSubmitting }
func (Success[T]) Kind() Kind { return KindSuccess }
func (Failed) Kind() Kind     { return KindFailed }

func (Idle) isState()       {}
func (Validating) isState() {}
func (Submitting) isState() {}
func (Success[T]) isState() {}
func (Failed) isState()     {}

// Option configures a controller.
type Option func(*options)

type options struct {
	observer func(State)
}

// WithObserver registers fn to be called on every transition. It runs while the
// controller holds its lock and must not call back into the controller.
func WithObserver(fn func(State)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// machine is the state holder embedded by every controller.
type machine struct {
	mu       sync.Mutex
	state    State
	observer func(State)
}

func newMachine(o options) machine {
	return machine{state: Idle{}, observer: o.observer}
}

// setLocked must be called with mu held.
func (m *machine) setLocked(s State) {
	m.state = s
	if m.observer != nil {
		m.observer(s)
	}
}

func (m *machine) set(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(s)
}

// State returns the current state.
func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Busy reports whether a request is outstanding; renderers disable the trigger
// control while it is true.
func (m *machine) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busyLocked()
}

func (m *machine) busyLocked() bool {
	k := m.state.Kind()
	return k == KindValidating || k == KindSubmitting
}

// Reset returns to Idle unless a request is outstanding.
func (m *machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.busyLocked() {
		m.setLocked(Idle{})
	}
}

package presenter

import "fmt"

// Phase is a step of a presenter operation.
type Phase int

const (
	Staging Phase = iota
	Animating
	Committing
	RelayoutPending
	Settled
	Failed
)

func (p Phase) String() string {
	switch p {
	case Staging:
		return "staging"
	case Animating:
		return "animating"
	case Committing:
		return "committing"
	case RelayoutPending:
		return "relayout-pending"
	case Settled:
		return "settled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Suspends reports whether an operation may wait on animations in p.
func (p Phase) Suspends() bool {
	return p == Animating || p == RelayoutPending
}

// transitions lists the legal successors of each phase. Additions run
// Staging, Animating, Committing, RelayoutPending, Settled. Removals and
// queries commit (or read) before they animate.
var transitions = map[Phase][]Phase{
	Staging:         {Animating, Committing, Settled},
	Animating:       {Committing, RelayoutPending, Settled},
	Committing:      {Animating, RelayoutPending, Settled},
	RelayoutPending: {Settled},
}

func canTransition(from, to Phase) bool {
	if to == Failed {
		return from != Settled && from != Failed
	}
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// PhaseEvent describes one transition.
type PhaseEvent struct {
	Presenter string
	Op        string
	Phase     Phase
	Size      int // logical size when the phase was entered
}

// PhaseObserver is called synchronously on every transition.
type PhaseObserver func(PhaseEvent)

// operation tracks the phase of one in-flight call.
type operation struct {
	op    string
	phase Phase
	emit  func(op string, p Phase)
}

func (o *operation) enter(p Phase) {
	if !canTransition(o.phase, p) {
		panic(fmt.Sprintf("presenter: %s: illegal phase transition %s -> %s", o.op, o.phase, p))
	}
	o.phase = p
	o.emit(o.op, p)
}

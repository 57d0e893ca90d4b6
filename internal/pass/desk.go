package pass

import (
	"errors"
	"time"
)

var (
	ErrNothingPending = errors.New("nothing pending")
	ErrNotConfirmed   = errors.New("pass not confirmed")
)

type State int

const (
	StateEmpty State = iota
	StatePending
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	default:
		return "empty"
	}
}

// Desk is the registration state of one page view.
//
//	Empty --Submit--> Pending --Confirm--> Confirmed
//	Confirmed --Submit--> Pending (the confirmed pass is dropped)
//
// Pass is nil exactly when the desk is Empty. Confirmation is the visitor's
// own statement that they paid; nothing verifies it.
type Desk struct {
	State       State
	Pass        *Pass
	ConfirmedAt time.Time
}

// Submit holds p as the pending pass, replacing whatever was there.
func (d Desk) Submit(p Pass) Desk {
	return Desk{State: StatePending, Pass: &p}
}

// Confirm promotes the pending pass. Confirming an already confirmed desk
// keeps it as is.
func (d Desk) Confirm(now time.Time) (Desk, error) {
	switch d.State {
	case StatePending:
		return Desk{State: StateConfirmed, Pass: d.Pass, ConfirmedAt: now}, nil
	case StateConfirmed:
		return d, nil
	default:
		return d, ErrNothingPending
	}
}

// Confirmed returns the pass that may be shown as a QR.
func (d Desk) Confirmed() (Pass, error) {
	if d.State != StateConfirmed || d.Pass == nil {
		return Pass{}, ErrNotConfirmed
	}
	return *d.Pass, nil
}

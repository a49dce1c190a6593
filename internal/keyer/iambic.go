package keyer

import (
	"sync"

	"github.com/kb9vor/cwgen/internal/cwerr"
	"github.com/kb9vor/cwgen/internal/tonequeue"
)

// graphState is one of the nine iambic-keyer automaton states.
type graphState int

const (
	stateIdle graphState = iota
	stateInDotA
	stateInDotB
	stateInDashA
	stateInDashB
	stateAfterDotA
	stateAfterDotB
	stateAfterDashA
	stateAfterDashB
)

// IambicKeyer is a Curtis-mode-A/B dual-paddle keyer. Exactly one
// paddle-event path (NotifyPaddle) and one end-of-tone path
// (AdvanceState, invoked by the attached generator after each
// dequeued tone, keyer-sent or not) drive its state machine; AdvanceState uses an
// advisory lock and reports cwerr Busy instead of blocking when the
// other path already holds it, per the contention-retry rule.
type IambicKeyer struct {
	gen ToneEnqueuer

	lock sync.Mutex // advisory: advance_state refuses to block

	mu          sync.Mutex
	state       graphState
	dotPaddle   bool
	dashPaddle  bool
	dotLatch    bool
	dashLatch   bool
	curtisB     bool
	curtisBLatch bool

	dotLenUS  int64
	dashLenUS int64
	eomLenUS  int64
}

// NewIambicKeyer builds an IambicKeyer bound to gen, with the given
// dot/dash/inter-mark durations in microseconds (normally sourced
// from the same timing.Durations the generator's character
// translation uses, so paddle-sent and text-sent elements match).
func NewIambicKeyer(gen ToneEnqueuer, dotLenUS, dashLenUS, eomLenUS int64) *IambicKeyer {
	return &IambicKeyer{gen: gen, dotLenUS: dotLenUS, dashLenUS: dashLenUS, eomLenUS: eomLenUS}
}

// SetDurations updates the per-element durations used for
// subsequently enqueued marks; in-flight tones are unaffected.
func (k *IambicKeyer) SetDurations(dotLenUS, dashLenUS, eomLenUS int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.dotLenUS, k.dashLenUS, k.eomLenUS = dotLenUS, dashLenUS, eomLenUS
}

// EnableCurtisModeB turns on the trailing-opposite-element behavior
// for squeeze keying.
func (k *IambicKeyer) EnableCurtisModeB() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.curtisB = true
}

// DisableCurtisModeB reverts to Curtis mode A (no trailing element).
func (k *IambicKeyer) DisableCurtisModeB() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.curtisB = false
	k.curtisBLatch = false
}

// NotifyPaddle reports the current dot/dash paddle contact states.
// Latching a paddle and bootstrapping the state machine out of IDLE
// both happen here; steady-state advancement happens in AdvanceState.
func (k *IambicKeyer) NotifyPaddle(dot, dash bool) error {
	k.mu.Lock()

	k.dotPaddle = dot
	k.dashPaddle = dash
	if dot {
		k.dotLatch = true
	}
	if dash {
		k.dashLatch = true
	}
	if k.curtisB && dot && dash {
		k.curtisBLatch = true
	}
	if !dot && !dash {
		// Both paddles released: drop the element memory so the mark in
		// flight is the last one sent. In mode B the curtisBLatch, not
		// the element latches, carries the one trailing opposite
		// element across the release.
		k.dotLatch = false
		k.dashLatch = false
	}

	bootstrapped := false
	if k.state == stateIdle {
		if dot {
			if k.curtisBLatch {
				k.state = stateAfterDashB
			} else {
				k.state = stateAfterDashA
			}
		} else {
			if k.curtisBLatch {
				k.state = stateAfterDotB
			} else {
				k.state = stateAfterDotA
			}
		}
		bootstrapped = true
	}
	k.mu.Unlock()

	if !bootstrapped {
		return nil
	}
	if err := k.AdvanceState(); err != nil && cwerr.IsBusy(err) {
		return k.AdvanceState()
	}
	return nil
}

// NotifyDotPaddle reports only the dot paddle's state, leaving the
// dash paddle as last reported.
func (k *IambicKeyer) NotifyDotPaddle(dot bool) error {
	k.mu.Lock()
	dash := k.dashPaddle
	k.mu.Unlock()
	return k.NotifyPaddle(dot, dash)
}

// NotifyDashPaddle reports only the dash paddle's state.
func (k *IambicKeyer) NotifyDashPaddle(dash bool) error {
	k.mu.Lock()
	dot := k.dotPaddle
	k.mu.Unlock()
	return k.NotifyPaddle(dot, dash)
}

// AdvanceState runs one transition of the keyer automaton, called
// both by NotifyPaddle's IDLE bootstrap and by the generator's
// end-of-tone hook. It returns cwerr Busy instead of blocking if
// another goroutine already holds the advisory lock; the caller
// should retry once after a short delay.
func (k *IambicKeyer) AdvanceState() error {
	if !k.lock.TryLock() {
		return cwerr.New(cwerr.Busy, "iambic keyer advance_state already in progress")
	}
	defer k.lock.Unlock()

	k.mu.Lock()
	defer k.mu.Unlock()

	switch k.state {
	case stateIdle:
		return nil

	case stateInDotA, stateInDotB:
		if err := k.gen.Enqueue(tonequeue.Tone{DurationUS: k.eomLenUS}); err != nil {
			return err
		}
		if k.state == stateInDotA {
			k.state = stateAfterDotA
		} else {
			k.state = stateAfterDotB
		}
		return nil

	case stateInDashA, stateInDashB:
		if err := k.gen.Enqueue(tonequeue.Tone{DurationUS: k.eomLenUS}); err != nil {
			return err
		}
		if k.state == stateInDashA {
			k.state = stateAfterDashA
		} else {
			k.state = stateAfterDashB
		}
		return nil

	case stateAfterDotA, stateAfterDotB:
		if !k.dotPaddle {
			k.dotLatch = false
		}
		freq := k.gen.Frequency()
		if k.state == stateAfterDotB {
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dashLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			k.state = stateInDashA
			return nil
		}
		if k.dashLatch {
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dashLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			if k.curtisBLatch {
				k.state = stateInDashB
			} else {
				k.state = stateInDashA
			}
			k.curtisBLatch = false
			return nil
		}
		if k.dotLatch {
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dotLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			k.state = stateInDotA
			return nil
		}
		if k.curtisBLatch {
			// Squeeze released while a dot was in flight: mode B owes
			// one trailing dash.
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dashLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			k.curtisBLatch = false
			k.state = stateInDashA
			return nil
		}
		k.state = stateIdle
		return nil

	case stateAfterDashA, stateAfterDashB:
		if !k.dashPaddle {
			k.dashLatch = false
		}
		freq := k.gen.Frequency()
		if k.state == stateAfterDashB {
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dotLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			k.state = stateInDotA
			return nil
		}
		if k.dotLatch {
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dotLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			if k.curtisBLatch {
				k.state = stateInDotB
			} else {
				k.state = stateInDotA
			}
			k.curtisBLatch = false
			return nil
		}
		if k.dashLatch {
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dashLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			k.state = stateInDashA
			return nil
		}
		if k.curtisBLatch {
			// Squeeze released while a dash was in flight: mode B owes
			// one trailing dot.
			if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: k.dotLenUS, Slope: tonequeue.StandardBoth}); err != nil {
				return err
			}
			k.curtisBLatch = false
			k.state = stateInDotA
			return nil
		}
		k.state = stateIdle
		return nil
	}

	return nil
}

// Idle reports whether the automaton is at rest (both paddles
// released and no pending latch).
func (k *IambicKeyer) Idle() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state == stateIdle
}

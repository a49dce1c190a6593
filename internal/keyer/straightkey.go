// Package keyer implements the two real-time keying front-ends that
// sit in front of a generator: a straight key (a single on/off
// contact) and a nine-state iambic paddle keyer with Curtis mode A/B
// support.
package keyer

import (
	"sync"

	"github.com/kb9vor/cwgen/internal/tonequeue"
)

// ToneEnqueuer is the subset of *generator.Generator a keyer needs:
// enough to push tones and read the current frequency/slope/quantum
// parameters without importing the generator package. The generator
// reaches a keyer only through the func value given to AttachKeyer,
// so neither package imports the other.
type ToneEnqueuer interface {
	Enqueue(t tonequeue.Tone) error
	Frequency() int
	SlopeLenUS() int64
	QuantumUS() int64
	SampleBased() bool
}

// StraightKey tracks the CLOSED/OPEN state of a single on/off key
// contact and translates transitions into tone-queue entries.
type StraightKey struct {
	mu     sync.Mutex
	gen    ToneEnqueuer
	closed bool
	keyCB  func(closed bool)
}

// NewStraightKey builds a StraightKey bound to gen, initially OPEN.
func NewStraightKey(gen ToneEnqueuer) *StraightKey {
	return &StraightKey{gen: gen}
}

// RegisterKeyingCallback installs fn to be called on every accepted
// (non-duplicate) transition, before the corresponding tones are
// enqueued.
func (k *StraightKey) RegisterKeyingCallback(fn func(closed bool)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keyCB = fn
}

// NotifyEvent reports a new key-contact state. A call reporting the
// same state as the current one is ignored (deduplication) and
// enqueues nothing, satisfying the idempotence property:
// notify_event(closed) called twice in a row only emits the first
// transition's tones.
func (k *StraightKey) NotifyEvent(closed bool) error {
	k.mu.Lock()
	if closed == k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = closed
	cb := k.keyCB
	k.mu.Unlock()

	if cb != nil {
		cb(closed)
	}

	freq := k.gen.Frequency()
	slopeLen := k.gen.SlopeLenUS()
	quantum := k.gen.QuantumUS()

	if closed {
		if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: slopeLen, Slope: tonequeue.RisingOnly}); err != nil {
			return err
		}
		return k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: quantum, Forever: true})
	}

	if err := k.gen.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: slopeLen, Slope: tonequeue.FallingOnly}); err != nil {
		return err
	}
	if k.gen.SampleBased() {
		return k.gen.Enqueue(tonequeue.Tone{FrequencyHz: 0, DurationUS: quantum, Forever: true})
	}
	return k.gen.Enqueue(tonequeue.Tone{FrequencyHz: 0, DurationUS: quantum})
}

// Closed reports the current key state.
func (k *StraightKey) Closed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed
}

// Package cw is the public control-plane facade over the generator
// and keyer packages: it owns one generator, an optional straight key
// or iambic keyer, and exposes the speed/frequency/volume/gap/
// weighting setters, the send operations, and the real-time keying
// notifications as a single explicitly-owned instance — deliberately
// not a package-level singleton, so a host process can run more than
// one independent engine (e.g. one per serial port) without any
// shared global state.
package cw

import (
	"context"
	"sync"
	"time"

	"github.com/kb9vor/cwgen/internal/audiosink"
	"github.com/kb9vor/cwgen/internal/cwerr"
	"github.com/kb9vor/cwgen/internal/generator"
	"github.com/kb9vor/cwgen/internal/keyer"
)

// Options configures a new Engine.
type Options struct {
	Sink          audiosink.Sink // nil uses a NullSink
	Device        string
	BufferSamples int

	SpeedWPM  int
	Frequency int
	Volume    int
	Gap       int
	Weighting int
}

// Engine is one independently-owned morse engine: a generator plus,
// optionally, an attached straight key or iambic keyer.
type Engine struct {
	gen *generator.Generator

	keyMu    sync.Mutex // guards lazy attach of exactly one keying subsystem
	straight *keyer.StraightKey
	iambic   *keyer.IambicKeyer
}

// New builds an Engine. The generator is constructed but not started;
// call Start to launch the producer goroutine.
func New(opts Options) (*Engine, error) {
	gen, err := generator.New(generator.Options{
		Sink:          opts.Sink,
		Device:        opts.Device,
		BufferSamples: opts.BufferSamples,
		SpeedWPM:      opts.SpeedWPM,
		Frequency:     opts.Frequency,
		Volume:        opts.Volume,
		Gap:           opts.Gap,
		Weighting:     opts.Weighting,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{gen: gen}, nil
}

// Start opens the sink and launches the producer goroutine.
func (e *Engine) Start(ctx context.Context) error { return e.gen.Start(ctx) }

// Stop flushes the queue, stops the producer goroutine, and closes
// the sink. timeout bounds the wait for the producer to exit.
func (e *Engine) Stop(timeout time.Duration) error { return e.gen.Stop(timeout) }

// Generator exposes the underlying generator for callers that need
// direct access (e.g. a custom hwkey backend).
func (e *Engine) Generator() *generator.Generator { return e.gen }

// --- parameter setters/getters ---

func (e *Engine) SetSpeed(wpm int) error        { return e.gen.SetSpeed(wpm) }
func (e *Engine) GetSpeed() int                 { return e.gen.GetSpeed() }
func (e *Engine) SetFrequency(hz int) error     { return e.gen.SetFrequency(hz) }
func (e *Engine) GetFrequency() int             { return e.gen.GetFrequency() }
func (e *Engine) SetVolume(percent int) error   { return e.gen.SetVolume(percent) }
func (e *Engine) GetVolume() int                { return e.gen.GetVolume() }
func (e *Engine) SetGap(units int) error        { return e.gen.SetGap(units) }
func (e *Engine) GetGap() int                   { return e.gen.GetGap() }
func (e *Engine) SetWeighting(percent int) error { return e.gen.SetWeighting(percent) }
func (e *Engine) GetWeighting() int             { return e.gen.GetWeighting() }

func (e *Engine) SetToneSlope(shape generator.Shape, lenUS int64) error {
	return e.gen.SetToneSlope(shape, lenUS)
}
func (e *Engine) GetToneSlope() (generator.Shape, int64) { return e.gen.GetToneSlope() }

// --- send operations ---

func (e *Engine) SendCharacter(c rune) error        { return e.gen.EnqueueCharacter(c, false) }
func (e *Engine) SendCharacterPartial(c rune) error { return e.gen.EnqueueCharacter(c, true) }
func (e *Engine) SendString(s string) error         { return e.gen.EnqueueString(s) }
func (e *Engine) SendRepresentation(rep string, partial bool) error {
	return e.gen.EnqueueRepresentation(rep, partial)
}

// --- queue control ---

func (e *Engine) FlushToneQueue()            { e.gen.FlushQueue() }
func (e *Engine) WaitForTone()               { e.gen.WaitForTone() }
func (e *Engine) WaitForToneQueue()          { e.gen.WaitForQueueDrain() }
func (e *Engine) WaitForToneQueueCritical(n int) { e.gen.WaitForQueueBelow(n) }
func (e *Engine) Silence() error             { return e.gen.Silence() }

// RegisterKeyingCallback installs fn to be called on every sink
// CLOSED/OPEN transition.
func (e *Engine) RegisterKeyingCallback(fn func(closed bool)) {
	e.gen.RegisterKeyingCallback(func(ev generator.KeyingEvent) { fn(ev.Closed) })
}

// LowWaterNotifications exposes the tone queue's low-water crossing
// signal, for a client goroutine refilling text as the queue drains.
func (e *Engine) LowWaterNotifications() <-chan struct{} {
	return e.gen.LowWaterNotifications()
}

// --- straight key ---

// NotifyStraightKey reports a straight-key contact transition. The
// straight key is created lazily on first use and is mutually
// exclusive with the iambic keyer on a given Engine.
func (e *Engine) NotifyStraightKey(closed bool) error {
	e.keyMu.Lock()
	if e.iambic != nil {
		e.keyMu.Unlock()
		return cwerr.New(cwerr.Busy, "iambic keyer already attached to this engine")
	}
	if e.straight == nil {
		e.straight = keyer.NewStraightKey(e.gen)
	}
	k := e.straight
	e.keyMu.Unlock()
	return k.NotifyEvent(closed)
}

// --- iambic keyer ---

func (e *Engine) attachIambic() (*keyer.IambicKeyer, error) {
	e.keyMu.Lock()
	defer e.keyMu.Unlock()
	if e.straight != nil {
		return nil, cwerr.New(cwerr.Busy, "straight key already attached to this engine")
	}
	if e.iambic == nil {
		d, err := e.gen.Durations()
		if err != nil {
			return nil, err
		}
		e.iambic = keyer.NewIambicKeyer(e.gen, d.DotLenUS, d.DashLenUS, d.EOMSpaceLenUS)
		e.gen.AttachKeyer(e.iambic.AdvanceState)
	}
	return e.iambic, nil
}

// NotifyPaddle reports both paddle states at once.
func (e *Engine) NotifyPaddle(dot, dash bool) error {
	k, err := e.attachIambic()
	if err != nil {
		return err
	}
	return k.NotifyPaddle(dot, dash)
}

// NotifyDotPaddle reports the dot paddle only.
func (e *Engine) NotifyDotPaddle(dot bool) error {
	k, err := e.attachIambic()
	if err != nil {
		return err
	}
	return k.NotifyDotPaddle(dot)
}

// NotifyDashPaddle reports the dash paddle only.
func (e *Engine) NotifyDashPaddle(dash bool) error {
	k, err := e.attachIambic()
	if err != nil {
		return err
	}
	return k.NotifyDashPaddle(dash)
}

// EnableCurtisModeB turns on trailing-opposite-element squeeze keying.
func (e *Engine) EnableCurtisModeB() error {
	k, err := e.attachIambic()
	if err != nil {
		return err
	}
	k.EnableCurtisModeB()
	return nil
}

// DisableCurtisModeB reverts to Curtis mode A.
func (e *Engine) DisableCurtisModeB() error {
	k, err := e.attachIambic()
	if err != nil {
		return err
	}
	k.DisableCurtisModeB()
	return nil
}

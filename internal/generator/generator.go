// Package generator owns a tone queue, an audio sink, and the single
// producer goroutine that drains tones from the queue and turns them
// into sound: a sleep for the null sink, a square-wave toggle for the
// console sink, or synthesized PCM samples for a sample-based sink.
//
// A Generator also exposes the character/string/representation
// enqueueing operations that translate text into tone-queue entries,
// since both the translation and the rendering share the same derived
// timing parameters.
package generator

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/kb9vor/cwgen/internal/audiosink"
	"github.com/kb9vor/cwgen/internal/cwerr"
	"github.com/kb9vor/cwgen/internal/timing"
	"github.com/kb9vor/cwgen/internal/tonequeue"
)

// Options configures a new Generator. Zero values are replaced with
// reasonable defaults by New.
type Options struct {
	Sink           audiosink.Sink
	Device         string
	BufferSamples  int   // sample-based sinks: samples per Write call
	QueueCapacity  int   // 0 uses tonequeue.DefaultCapacity
	QuantumUS      int64 // forever-tone re-enqueue granularity; 0 means 100µs
	HighWaterMark  int   // 0 uses QueueCapacity-1
	LowWaterMark   int   // 0 uses 1

	SpeedWPM  int // 0 defaults to 20
	Frequency int // Hz
	Volume    int // percent, 0-100
	Gap       int // Farnsworth units
	Weighting int // percent, 0 defaults to 50

	Shape      Shape
	SlopeLenUS int64
}

func (o Options) withDefaults() Options {
	if o.BufferSamples <= 0 {
		o.BufferSamples = 1024
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = tonequeue.DefaultCapacity
	}
	if o.QuantumUS <= 0 {
		o.QuantumUS = 100
	}
	if o.SpeedWPM <= 0 {
		o.SpeedWPM = 20
	}
	if o.Weighting == 0 {
		o.Weighting = 50
	}
	if o.Volume == 0 {
		o.Volume = 70
	}
	if o.Frequency == 0 {
		o.Frequency = 600
	}
	if o.SlopeLenUS == 0 {
		o.SlopeLenUS = 2000
	}
	return o
}

// KeyingEvent is delivered to a registered keying callback whenever
// the sink transitions between CLOSED (tone, rising slope) and OPEN
// (silence).
type KeyingEvent struct {
	Closed bool
}

// Generator is safe for concurrent use: setters and enqueue operations
// may be called from any number of client goroutines, while exactly
// one internal goroutine owns the sink and renders samples.
type Generator struct {
	queue *tonequeue.Queue
	sink  audiosink.Sink

	bufferNSamples int
	quantumUS      int64

	mu         sync.Mutex
	params     timing.Params
	frequency  int
	volumePct  int
	volumeAbs  int // percent * 32768 / 100; can reach 32768, so not an int16
	shape      Shape
	slopeLenUS int64
	inSync     bool
	durations  timing.Durations
	slopeTable []int

	sampleRate int

	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}

	keyingMu sync.Mutex
	keyingCB func(KeyingEvent)

	extTimerUS int64 // accumulated duration_us, consulted by an attached keyer
	advanceCB  func() error

	lastKeyClosed bool // producer-goroutine only; filters keying callbacks to transitions
}

// New builds a Generator around opts.Sink (or a NullSink if nil) with
// the given starting control parameters. It does not start the
// producer goroutine; call Start for that.
func New(opts Options) (*Generator, error) {
	opts = opts.withDefaults()

	if opts.Sink == nil {
		opts.Sink = audiosink.NewNullSink(8000)
	}

	g := &Generator{
		queue:          tonequeue.New(opts.QueueCapacity),
		sink:           opts.Sink,
		bufferNSamples: opts.BufferSamples,
		quantumUS:      opts.QuantumUS,
		frequency:      opts.Frequency,
		shape:          opts.Shape,
		slopeLenUS:     opts.SlopeLenUS,
		params: timing.Params{
			SpeedWPM:  opts.SpeedWPM,
			GapUnits:  opts.Gap,
			Weighting: opts.Weighting,
		},
	}
	g.volumePct = opts.Volume
	g.volumeAbs = volumeAbs(opts.Volume)

	if opts.HighWaterMark > 0 {
		g.queue.SetHighWaterMark(opts.HighWaterMark)
	} else {
		g.queue.SetHighWaterMark(opts.QueueCapacity - 1)
	}
	if opts.LowWaterMark > 0 {
		g.queue.SetLowWaterMark(opts.LowWaterMark)
	}

	if err := g.sink.Configure(opts.Device); err != nil {
		return nil, cwerr.New(cwerr.Unavailable, "configure sink: %v", err)
	}

	if _, err := g.sync(); err != nil {
		return nil, err
	}

	return g, nil
}

func volumeAbs(percent int) int {
	return percent * 32768 / 100
}

// Queue exposes the underlying tone queue so a keyer or client can
// enqueue tones and wait on queue-level conditions directly.
func (g *Generator) Queue() *tonequeue.Queue { return g.queue }

// QuantumUS returns the forever-tone re-enqueue granularity.
func (g *Generator) QuantumUS() int64 { return g.quantumUS }

// QueueLength returns the current tone-queue length.
func (g *Generator) QueueLength() int { return g.queue.Length() }

// Enqueue pushes t directly onto the tone queue, bypassing the
// character-translation pre-flight check. Used by the keyer package
// to emit key-transition tones.
func (g *Generator) Enqueue(t tonequeue.Tone) error {
	return g.queue.Enqueue(t)
}

// Frequency returns the current sidetone frequency, satisfying
// keyer.ToneEnqueuer.
func (g *Generator) Frequency() int { return g.GetFrequency() }

// SlopeLenUS returns the current tone-slope length in microseconds,
// satisfying keyer.ToneEnqueuer.
func (g *Generator) SlopeLenUS() int64 {
	_, lenUS := g.GetToneSlope()
	return lenUS
}

// SampleBased reports whether the attached sink renders PCM samples
// rather than rendering a square wave (console) or nothing (null).
// The straight key and iambic keyer use this to decide whether an
// OPEN transition needs a forever silence tone (sample-based sinks,
// to keep the producer loop paced) or a single quantum tone (console).
func (g *Generator) SampleBased() bool {
	switch g.sink.(type) {
	case *audiosink.NullSink, *audiosink.ConsoleSink:
		return false
	default:
		return true
	}
}

// FlushQueue empties the tone queue without touching the sink.
func (g *Generator) FlushQueue() { g.queue.Flush() }

// WaitForTone blocks until the tone-queue length differs from its
// value at the call, or the queue is empty; see tonequeue.WaitForTone.
func (g *Generator) WaitForTone() { g.queue.WaitForTone() }

// WaitForQueueDrain blocks until the tone queue is empty.
func (g *Generator) WaitForQueueDrain() { g.queue.WaitForDrain() }

// WaitForQueueBelow blocks until the tone queue length drops to or
// below n (wait_for_tone_queue_critical).
func (g *Generator) WaitForQueueBelow(n int) { g.queue.WaitForLevelBelow(n) }

// LowWaterNotifications exposes the queue's low-water crossing
// notifications, for a client refilling text on a background
// goroutine.
func (g *Generator) LowWaterNotifications() <-chan struct{} {
	return g.queue.LowWaterNotifications()
}

// RegisterKeyingCallback installs fn to be invoked on every sink
// CLOSED/OPEN transition observed by the producer loop. Passing nil
// disables notification.
func (g *Generator) RegisterKeyingCallback(fn func(KeyingEvent)) {
	g.keyingMu.Lock()
	defer g.keyingMu.Unlock()
	g.keyingCB = fn
}

func (g *Generator) fireKeying(closed bool) {
	g.keyingMu.Lock()
	cb := g.keyingCB
	g.keyingMu.Unlock()
	if cb != nil {
		cb(KeyingEvent{Closed: closed})
	}
}

// AttachKeyer registers a callback invoked after each dequeued tone is
// rendered (the iambic keyer's advance_state hook). advance may return
// cwerr ErrBusy to request one retry after 1ms, per the
// contention-retry rule.
func (g *Generator) AttachKeyer(advance func() error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advanceCB = advance
}

// DetachKeyer removes a previously attached keyer callback.
func (g *Generator) DetachKeyer() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advanceCB = nil
}

// ExternalTimerUS returns the accumulated duration, in microseconds,
// of every tone the producer loop has dequeued since the generator
// was created, whether or not a keyer is attached. The keyer package
// does not read it.
func (g *Generator) ExternalTimerUS() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.extTimerUS
}

// Durations returns the current derived tone/space durations,
// syncing parameters first if any setter changed them since the last
// sync. An attached iambic keyer uses this to keep its own element
// lengths aligned with the generator's.
func (g *Generator) Durations() (timing.Durations, error) {
	return g.sync()
}

// sync recomputes derived durations and the slope-amplitudes table
// from current control parameters, if anything changed since the last
// sync. Callers already hold no lock; sync takes and releases g.mu
// internally.
func (g *Generator) sync() (timing.Durations, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.syncLocked()
}

func (g *Generator) syncLocked() (timing.Durations, error) {
	if g.inSync {
		return g.durations, nil
	}
	d, err := timing.Sync(g.params)
	if err != nil {
		return timing.Durations{}, err
	}
	g.durations = d

	rate := g.sampleRate
	if rate <= 0 {
		rate = 8000
	}
	n := int(rate) * int(g.slopeLenUS) / 1_000_000
	g.slopeTable = buildSlopeAmplitudes(g.shape, n, g.volumeAbs)

	g.inSync = true
	return g.durations, nil
}

// Start launches the producer goroutine: opens the sink (on every
// call that finds the generator not running), then loops dequeuing tones until
// Stop is called. ctx only bounds the Open call; once running, the
// loop only stops via Stop.
func (g *Generator) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return cwerr.New(cwerr.Busy, "generator already running")
	}
	g.mu.Unlock()

	rate, err := g.sink.Open(ctx)
	if err != nil {
		return cwerr.New(cwerr.Unavailable, "open sink: %v", err)
	}

	g.mu.Lock()
	g.sampleRate = rate
	g.inSync = false
	_, syncErr := g.syncLocked()
	g.running = true
	g.stopCh = make(chan struct{})
	g.doneCh = make(chan struct{})
	g.mu.Unlock()

	if syncErr != nil {
		return syncErr
	}

	go g.run()
	return nil
}

// Stop sets do_dequeue_and_play false, flushes the queue, enqueues a
// zero-volume quantum tone to wake a blocked producer, then waits for
// it to exit. timeout bounds the wait; a zero timeout waits forever.
func (g *Generator) Stop(timeout time.Duration) error {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return nil
	}
	stopCh := g.stopCh
	doneCh := g.doneCh
	g.running = false
	g.mu.Unlock()

	close(stopCh)
	g.queue.Flush()
	_ = g.queue.Enqueue(tonequeue.Tone{FrequencyHz: 0, DurationUS: g.quantumUS})

	if timeout <= 0 {
		<-doneCh
		return g.sink.Close()
	}

	select {
	case <-doneCh:
		return g.sink.Close()
	case <-time.After(timeout):
		return cwerr.New(cwerr.Internal, "producer goroutine did not exit within %s", timeout)
	}
}

// Silence enqueues a single zero-frequency quantum tone to drop the
// sink to zero amplitude cleanly, without stopping the producer loop.
func (g *Generator) Silence() error {
	return g.queue.Enqueue(tonequeue.Tone{FrequencyHz: 0, DurationUS: g.quantumUS})
}

func (g *Generator) run() {
	defer close(g.doneCh)

	var sub subState
	for {
		select {
		case <-g.stopCh:
			return
		default:
		}

		tone, isPadding, ok := g.nextTone(&sub)
		if !ok {
			return
		}

		g.mu.Lock()
		g.extTimerUS += tone.DurationUS
		g.mu.Unlock()

		switch sink := g.sink.(type) {
		case *audiosink.NullSink:
			if !isPadding {
				g.fireKeyingForTone(tone)
			}
			sink.SleepTone(tone.DurationUS)
		case *audiosink.ConsoleSink:
			// The console sink is a square-wave toggle, not a sample
			// device: flip its oscillator to the tone's frequency and
			// hold it for the tone's duration. Routing it through
			// renderTone would truncate a 100µs quantum at the sink's
			// nominal 8kHz rate to zero samples and busy-spin on a
			// forever hold.
			if !isPadding {
				g.fireKeyingForTone(tone)
			}
			sink.SetTone(tone.FrequencyHz)
			time.Sleep(time.Duration(tone.DurationUS) * time.Microsecond)
		default:
			if !isPadding {
				g.fireKeyingForTone(tone)
			}
			if isPadding {
				g.padAndFlush(&sub)
			} else {
				g.renderTone(tone, &sub)
			}
		}

		if !isPadding {
			g.invokeAdvance()
		}
	}
}

// nextTone implements the non-blocking-dequeue-then-pad-then-block
// sequence from the rendering design: if a tone is immediately
// available, return it. If the queue is empty but the sample buffer
// is partially filled, report isPadding so the caller synthesizes
// silence to flush the buffer, without consuming a real tone.
// Otherwise block until woken by an enqueue or a stop request.
func (g *Generator) nextTone(sub *subState) (tone tonequeue.Tone, isPadding bool, ok bool) {
	if r := g.queue.Dequeue(); !r.Empty {
		return r.Tone, false, true
	}

	if sub.buffer != nil && sub.start > 0 {
		return tonequeue.Tone{}, true, true
	}

	t := g.queue.DequeueBlocking()
	select {
	case <-g.stopCh:
		return tonequeue.Tone{}, false, false
	default:
		return t, false, true
	}
}

// padAndFlush fills the remainder of the sub-buffer with silence and
// writes the completed buffer to the sink.
func (g *Generator) padAndFlush(sub *subState) {
	if sub.buffer == nil {
		return
	}
	for i := sub.start; i < g.bufferNSamples; i++ {
		sub.buffer[i] = 0
	}
	_ = g.sink.Write(sub.buffer)
	sub.start, sub.stop, sub.phase = 0, 0, 0
}

// fireKeyingForTone maps a dequeued tone to a key value (any audible
// frequency is CLOSED, silence is OPEN) and notifies the registered
// callback on transitions only, so a forever tone re-dequeued every
// quantum reports a single CLOSED rather than one per pass.
func (g *Generator) fireKeyingForTone(t tonequeue.Tone) {
	closed := t.FrequencyHz > 0
	if closed == g.lastKeyClosed {
		return
	}
	g.lastKeyClosed = closed
	g.fireKeying(closed)
}

func (g *Generator) invokeAdvance() {
	g.mu.Lock()
	advance := g.advanceCB
	g.mu.Unlock()
	if advance == nil {
		return
	}
	if err := advance(); err != nil {
		if cwerr.IsBusy(err) {
			time.Sleep(time.Millisecond)
			_ = advance()
		}
	}
}

// subState holds the two sub-buffer indices that persist across
// multiple dequeued tones until a buffer fills and is flushed to the
// sink.
type subState struct {
	buffer   []int16
	start    int
	stop     int
	phase    float64
}

func (g *Generator) renderTone(t tonequeue.Tone, sub *subState) {
	if sub.buffer == nil {
		sub.buffer = make([]int16, g.bufferNSamples)
	}

	g.mu.Lock()
	rate := g.sampleRate
	slopeTable := g.slopeTable
	volumeAbs := g.volumeAbs
	g.mu.Unlock()

	nSamples := samplesFromUS(rate, t.DurationUS)
	slopeN := len(slopeTable)

	risingN, fallingN := 0, 0
	switch t.Slope {
	case tonequeue.RisingOnly:
		risingN = slopeN
	case tonequeue.FallingOnly:
		fallingN = slopeN
	case tonequeue.StandardBoth:
		risingN, fallingN = slopeN, slopeN
	}

	remaining := nSamples
	iter := 0

	for remaining > 0 {
		free := g.bufferNSamples - sub.start
		if remaining >= free {
			sub.stop = g.bufferNSamples - 1
		} else {
			sub.stop = sub.start + remaining - 1
		}

		for i := sub.start; i <= sub.stop; i++ {
			amp := amplitude(t.FrequencyHz, iter, nSamples, risingN, fallingN, slopeTable, volumeAbs)
			tOff := float64(i - sub.start)
			ph := 2*math.Pi*float64(t.FrequencyHz)*tOff/float64(rate) + sub.phase
			sub.buffer[i] = clampSample(math.Round(amp * math.Sin(ph)))
			iter++
		}

		written := sub.stop - sub.start + 1
		sub.phase = math.Mod(sub.phase+2*math.Pi*float64(t.FrequencyHz)*float64(written)/float64(rate), 2*math.Pi)

		if sub.stop == g.bufferNSamples-1 {
			_ = g.sink.Write(sub.buffer)
			sub.start, sub.stop = 0, 0
		} else {
			sub.start = sub.stop + 1
		}

		remaining -= written
	}
}

func amplitude(freqHz, i, nSamples, risingN, fallingN int, slopeTable []int, volumeAbs int) float64 {
	if freqHz == 0 {
		return 0
	}
	if i < risingN {
		return float64(slopeTable[i])
	}
	if i >= nSamples-fallingN {
		idx := nSamples - i - 1
		if idx >= 0 && idx < len(slopeTable) {
			return float64(slopeTable[idx])
		}
		return 0
	}
	return float64(volumeAbs)
}

// clampSample pins a rounded sample to the int16 range: volume_abs is
// 32768 at 100%, one past MaxInt16, so a full-scale peak must saturate
// rather than wrap.
func clampSample(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// samplesFromUS computes sample_rate * duration_us / 1_000_000 using
// the overflow-avoiding integer form from the timing design; the
// integer divisions truncate, so the result is rounded down.
func samplesFromUS(sampleRate int, durationUS int64) int {
	return int((int64(sampleRate) / 100) * durationUS / 10_000)
}

// Package audiosink defines the audio-sink contract and provides the
// two reference implementations the core ships with: a Null sink
// (timed no-op, used in tests and headless operation) and a Console
// sink (ASCII VU meter, used when no real audio device is available).
// Sample-based backends (the portaudiosink package's PortAudio
// backend, or any future OSS/ALSA/PulseAudio backend) implement the
// same interface but live outside this package, one build tag or
// import per platform rather than a union compiled into the core.
package audiosink

import (
	"context"
	"time"
)

// SampleRateProbeOrder is the order sample-based sinks try rates in
// when opening a device: 44100 Hz first, then 48000 Hz, then the lower
// rates down to 8000 Hz.
var SampleRateProbeOrder = []int{44100, 48000, 32000, 22050, 16000, 11025, 8000}

// Sink is the contract any audio backend implements to plug into the
// generator. Write is only ever called from the generator's single
// producer goroutine; Configure/Open/Close/Silence may be called from
// a client goroutine during setup/teardown.
type Sink interface {
	// Configure records the device name the sink should (eventually)
	// open. It does not itself open a device.
	Configure(device string) error

	// Open opens the device and returns the sample rate it settled
	// on, probed per SampleRateProbeOrder (real, sample-based backends
	// only; Null and Console ignore the probe and return a nominal rate).
	Open(ctx context.Context) (sampleRateHz int, err error)

	// Write delivers exactly one full buffer of signed 16-bit mono
	// samples, native endianness.
	Write(samples []int16) error

	// Silence drops a sink with an internal oscillator (e.g. Console)
	// to zero amplitude immediately. Sample-based sinks can no-op;
	// their silence is just a zero-valued buffer going through Write.
	Silence() error

	// Close releases the device.
	Close() error
}

// NullSink discards tones after sleeping their nominal duration. It
// never touches real audio hardware and is the sink used by the
// generator and cw unit tests.
type NullSink struct {
	sampleRate int
	sleep      func(time.Duration)
}

// NewNullSink builds a NullSink at the given nominal sample rate. If
// sampleRateHz is 0, 8000 Hz is assumed (the low end of the probe
// order, cheap for tests).
func NewNullSink(sampleRateHz int) *NullSink {
	if sampleRateHz <= 0 {
		sampleRateHz = 8000
	}
	return &NullSink{sampleRate: sampleRateHz, sleep: time.Sleep}
}

func (s *NullSink) Configure(string) error { return nil }

func (s *NullSink) Open(context.Context) (int, error) { return s.sampleRate, nil }

// Write does not block in proportion to duration: the null sink has no
// notion of tone duration at the buffer level (that happens in
// generator, which converts durations to sample counts before
// reaching Write). Write is a pure accounting no-op.
func (s *NullSink) Write(samples []int16) error { return nil }

func (s *NullSink) Silence() error { return nil }

func (s *NullSink) Close() error { return nil }

// SleepTone is called by code (e.g. a pure-tone generator mode) that
// wants the null-sink's timed no-op directly: sleep for the given
// microseconds instead of synthesizing samples.
func (s *NullSink) SleepTone(durationUS int64) {
	s.sleep(time.Duration(durationUS) * time.Microsecond)
}

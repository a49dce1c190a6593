// Package portaudiosink is a sample-based audio-sink backend for the
// generator, built on github.com/gordonklaus/portaudio. It drives a
// real output device instead of the console meter or null sinks, over
// the one cross-platform host API portaudio wraps.
package portaudiosink

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/kb9vor/cwgen/internal/audiosink"
)

// Sink drives the configured output device (the host default when none
// or "default" was configured) through PortAudio's blocking
// stream API. Write blocks until the stream accepts the buffer,
// matching the generator's expectation that Write only returns once
// the buffer has actually been handed to the device (so the producer
// loop's pacing stays correct).
type Sink struct {
	mu         sync.Mutex
	device     string
	stream     *portaudio.Stream
	outBuf     []int16 // buffer bound to the stream; Write copies into this
	sampleRate int
	bufSamples int
}

// New builds a Sink that will request bufSamples-sized int16 mono
// buffers once opened. bufSamples should match the generator's
// buffer_n_samples so every Write call lines up with one PortAudio
// stream write.
func New(bufSamples int) *Sink {
	return &Sink{bufSamples: bufSamples}
}

func (s *Sink) Configure(device string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = device
	return nil
}

// Open initializes PortAudio and opens the output device named by
// Configure (the default output device when the name is empty or
// "default"), probing sample rates in the configured order until one
// is accepted.
func (s *Sink) Open(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return 0, fmt.Errorf("portaudio: initialize: %w", err)
	}

	dev, err := s.resolveDevice()
	if err != nil {
		_ = portaudio.Terminate()
		return 0, err
	}

	var lastErr error
	for _, rate := range audiosink.SampleRateProbeOrder {
		params := portaudio.StreamParameters{
			Output: portaudio.StreamDeviceParameters{
				Device:   dev,
				Channels: 1,
				Latency:  dev.DefaultLowOutputLatency,
			},
			SampleRate:      float64(rate),
			FramesPerBuffer: s.bufSamples,
		}
		outBuf := make([]int16, s.bufSamples)
		stream, openErr := portaudio.OpenStream(params, outBuf)
		if openErr != nil {
			lastErr = openErr
			continue
		}
		if startErr := stream.Start(); startErr != nil {
			_ = stream.Close()
			lastErr = startErr
			continue
		}
		s.stream = stream
		s.outBuf = outBuf
		s.sampleRate = rate
		return rate, nil
	}

	_ = portaudio.Terminate()
	return 0, fmt.Errorf("portaudio: no probed sample rate accepted, last error: %w", lastErr)
}

func (s *Sink) resolveDevice() (*portaudio.DeviceInfo, error) {
	if s.device == "" || s.device == "default" {
		return portaudio.DefaultOutputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio: enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == s.device && d.MaxOutputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("portaudio: output device %q not found", s.device)
}

// Write hands exactly one buffer of samples to the open stream.
func (s *Sink) Write(samples []int16) error {
	s.mu.Lock()
	stream := s.stream
	outBuf := s.outBuf
	s.mu.Unlock()

	if stream == nil {
		return fmt.Errorf("portaudiosink: write before open")
	}
	n := copy(outBuf, samples)
	for i := n; i < len(outBuf); i++ {
		outBuf[i] = 0
	}
	if err := stream.Write(); err != nil {
		return fmt.Errorf("portaudio: write: %w", err)
	}
	return nil
}

// Silence is a no-op: the generator achieves silence by writing
// zero-valued buffers, same as any sample-based sink.
func (s *Sink) Silence() error { return nil }

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		_ = s.stream.Stop()
		_ = s.stream.Close()
		s.stream = nil
	}
	return portaudio.Terminate()
}

var _ audiosink.Sink = (*Sink)(nil)

package audiosink

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleSink renders received buffers as a crude ASCII VU meter to an
// io.Writer (normally os.Stdout), standing in for a real device when
// none is present. It satisfies Sink so the generator's producer loop
// doesn't need to know it isn't a real audio device.
type ConsoleSink struct {
	mu         sync.Mutex
	out        io.Writer
	sampleRate int
	device     string
	silenced   bool
}

// NewConsoleSink writes a one-line meter per buffer to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out, sampleRate: 8000, silenced: true}
}

// SetTone drives the square-wave stand-in directly from the
// generator's console path: one line when the oscillator turns on, one
// when it turns off, nothing while the state holds — so a forever tone
// re-issued every quantum draws a single line, not one per pass.
func (c *ConsoleSink) SetTone(frequencyHz int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	on := frequencyHz > 0
	if on == !c.silenced {
		return
	}
	c.silenced = !on
	if on {
		fmt.Fprintf(c.out, "  %s (%d Hz)\n", "####################", frequencyHz)
	} else {
		fmt.Fprintln(c.out, "  .")
	}
}

func (c *ConsoleSink) Configure(device string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device = device
	return nil
}

func (c *ConsoleSink) Open(context.Context) (int, error) {
	return c.sampleRate, nil
}

func (c *ConsoleSink) Write(samples []int16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var peak int32
	for _, s := range samples {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		c.silenced = true
		fmt.Fprintln(c.out, "  .")
		return nil
	}
	c.silenced = false
	width := int(peak) * 40 / 32768
	if width < 1 {
		width = 1
	}
	bar := make([]byte, width)
	for i := range bar {
		bar[i] = '#'
	}
	fmt.Fprintf(c.out, "  %s\n", bar)
	return nil
}

func (c *ConsoleSink) Silence() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.silenced {
		c.silenced = true
		fmt.Fprintln(c.out, "  .")
	}
	return nil
}

func (c *ConsoleSink) Close() error { return nil }

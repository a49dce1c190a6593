// Package hwkey wires real hardware inputs to the keying notification
// operations of a cw.Engine: GPIO lines for a paddle or a straight
// key, and a terminal in raw mode for operators without GPIO hardware.
package hwkey

import (
	"context"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Notifier is the subset of *cw.Engine a hardware backend drives.
type Notifier interface {
	NotifyStraightKey(closed bool) error
	NotifyPaddle(dot, dash bool) error
}

// GPIOStraightKeyOptions configures a single-line straight key reader.
type GPIOStraightKeyOptions struct {
	Chip       string // e.g. "gpiochip0"
	Line       int
	ActiveLow  bool // true if the contact pulls the line low when closed
	Debounce   time.Duration
}

// GPIOStraightKey polls (via edge-detect events) one GPIO line and
// forwards CLOSED/OPEN transitions to a Notifier.
type GPIOStraightKey struct {
	opts GPIOStraightKeyOptions
	n    Notifier
	line *gpiocdev.Line
}

// NewGPIOStraightKey opens the configured line with edge detection on
// both edges, debounced in software.
func NewGPIOStraightKey(opts GPIOStraightKeyOptions, n Notifier) (*GPIOStraightKey, error) {
	k := &GPIOStraightKey{opts: opts, n: n}

	line, err := gpiocdev.RequestLine(opts.Chip, opts.Line,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithDebounce(opts.Debounce),
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(k.handleEdge),
	)
	if err != nil {
		return nil, fmt.Errorf("hwkey: request line %s:%d: %w", opts.Chip, opts.Line, err)
	}
	k.line = line
	return k, nil
}

func (k *GPIOStraightKey) handleEdge(evt gpiocdev.LineEvent) {
	closed := evt.Type == gpiocdev.LineEventRisingEdge
	if k.opts.ActiveLow {
		closed = evt.Type == gpiocdev.LineEventFallingEdge
	}
	_ = k.n.NotifyStraightKey(closed)
}

// Close releases the GPIO line.
func (k *GPIOStraightKey) Close() error {
	if k.line == nil {
		return nil
	}
	return k.line.Close()
}

// GPIOPaddleOptions configures a two-line iambic paddle reader.
type GPIOPaddleOptions struct {
	Chip        string
	DotLine     int
	DashLine    int
	ActiveLow   bool
	Debounce    time.Duration
}

// GPIOPaddle polls two GPIO lines (dot and dash contacts) and forwards
// combined paddle state to a Notifier.
type GPIOPaddle struct {
	opts     GPIOPaddleOptions
	n        Notifier
	dotLine  *gpiocdev.Line
	dashLine *gpiocdev.Line
	dot      bool
	dash     bool
}

// NewGPIOPaddle opens both paddle lines with edge detection.
func NewGPIOPaddle(ctx context.Context, opts GPIOPaddleOptions, n Notifier) (*GPIOPaddle, error) {
	p := &GPIOPaddle{opts: opts, n: n}

	dotLine, err := gpiocdev.RequestLine(opts.Chip, opts.DotLine,
		gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithDebounce(opts.Debounce),
		gpiocdev.WithBothEdges, gpiocdev.WithEventHandler(p.handleDot))
	if err != nil {
		return nil, fmt.Errorf("hwkey: request dot line %d: %w", opts.DotLine, err)
	}

	dashLine, err := gpiocdev.RequestLine(opts.Chip, opts.DashLine,
		gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithDebounce(opts.Debounce),
		gpiocdev.WithBothEdges, gpiocdev.WithEventHandler(p.handleDash))
	if err != nil {
		_ = dotLine.Close()
		return nil, fmt.Errorf("hwkey: request dash line %d: %w", opts.DashLine, err)
	}

	p.dotLine, p.dashLine = dotLine, dashLine
	return p, nil
}

func (p *GPIOPaddle) handleDot(evt gpiocdev.LineEvent) {
	p.dot = p.contactClosed(evt)
	_ = p.n.NotifyPaddle(p.dot, p.dash)
}

func (p *GPIOPaddle) handleDash(evt gpiocdev.LineEvent) {
	p.dash = p.contactClosed(evt)
	_ = p.n.NotifyPaddle(p.dot, p.dash)
}

func (p *GPIOPaddle) contactClosed(evt gpiocdev.LineEvent) bool {
	if p.opts.ActiveLow {
		return evt.Type == gpiocdev.LineEventFallingEdge
	}
	return evt.Type == gpiocdev.LineEventRisingEdge
}

// Close releases both paddle lines.
func (p *GPIOPaddle) Close() error {
	err1 := p.dotLine.Close()
	err2 := p.dashLine.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

package hwkey

import (
	"context"
	"fmt"

	"github.com/pkg/term"
)

// TermKey is a software straight key driven by holding the space bar
// down on a raw-mode terminal: a keydown/keyup pair isn't visible over
// a plain tty read, so TermKey instead treats "space received" as a
// CLOSED pulse of a fixed nominal duration, immediately followed by
// OPEN — adequate for practice sending without dedicated hardware.
type TermKey struct {
	n  Notifier
	tt *term.Term
}

// NewTermKey opens the controlling terminal in raw mode and starts a
// goroutine reading space-bar presses, stopping when ctx is done.
func NewTermKey(ctx context.Context, n Notifier) (*TermKey, error) {
	return newTermKeyAt(ctx, "/dev/tty", n)
}

// newTermKeyAt is the device-path-parameterized constructor, split out
// so tests can drive a pty slave instead of the real controlling
// terminal.
func newTermKeyAt(ctx context.Context, path string, n Notifier) (*TermKey, error) {
	tt, err := term.Open(path, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("hwkey: open controlling terminal: %w", err)
	}

	k := &TermKey{n: n, tt: tt}
	go k.readLoop(ctx)
	return k, nil
}

func (k *TermKey) readLoop(ctx context.Context) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := k.tt.Read(buf)
		if err != nil || n == 0 {
			return
		}
		switch buf[0] {
		case ' ':
			_ = k.n.NotifyStraightKey(true)
			_ = k.n.NotifyStraightKey(false)
		case 'q', 3: // 'q' or Ctrl-C
			return
		}
	}
}

// Close restores the terminal's original mode and closes the handle.
func (k *TermKey) Close() error {
	if err := k.tt.Restore(); err != nil {
		return err
	}
	return k.tt.Close()
}

package hwkey

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// recordingNotifier is a test double satisfying Notifier.
type recordingNotifier struct {
	mu     sync.Mutex
	events []bool
}

func (r *recordingNotifier) NotifyStraightKey(closed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, closed)
	return nil
}

func (r *recordingNotifier) NotifyPaddle(dot, dash bool) error { return nil }

func (r *recordingNotifier) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.events))
	copy(out, r.events)
	return out
}

func TestTermKey_SpaceBarProducesClosedThenOpenPulse(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = master.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := &recordingNotifier{}
	k, err := newTermKeyAt(ctx, slave.Name(), n)
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })

	_, err = master.Write([]byte(" "))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(n.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	events := n.snapshot()
	require.Equal(t, []bool{true, false}, events)
}

func TestTermKey_QuitByteStopsReadLoop(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = master.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := &recordingNotifier{}
	k, err := newTermKeyAt(ctx, slave.Name(), n)
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })

	_, err = master.Write([]byte("q"))
	require.NoError(t, err)

	// The read loop should exit on 'q' without recording any event.
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, n.snapshot())
}

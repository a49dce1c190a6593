package cw

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kb9vor/cwgen/internal/audiosink"
	"github.com/kb9vor/cwgen/internal/cwerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Options{
		Sink:      audiosink.NewNullSink(8000),
		SpeedWPM:  40, // fast, to keep NullSink's real-time sleeps short
		Frequency: 600,
		Volume:    70,
	})
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(2 * time.Second) })
	return e
}

func TestEngine_SendStringDrainsQueue(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SendString("hi"))
	e.WaitForToneQueue()
}

func TestEngine_StraightKeyAndIambicAreMutuallyExclusive(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.NotifyStraightKey(true))
	require.NoError(t, e.NotifyStraightKey(false))

	err := e.NotifyPaddle(true, false)
	require.Error(t, err)
	assert.True(t, cwerr.IsBusy(err))
}

func TestEngine_IambicAttachBlocksStraightKey(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.NotifyPaddle(true, false))

	err := e.NotifyStraightKey(true)
	require.Error(t, err)
	assert.True(t, cwerr.IsBusy(err))
}

func TestEngine_KeyingCallbackFiresOnStraightKey(t *testing.T) {
	e := newTestEngine(t)

	// The callback runs on the producer goroutine, so collect under a
	// lock and poll: transitions are filtered, so holding the key down
	// across many forever-tone quanta still reports a single CLOSED.
	var mu sync.Mutex
	var events []bool
	e.RegisterKeyingCallback(func(closed bool) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, closed)
	})

	require.NoError(t, e.NotifyStraightKey(true))
	require.NoError(t, e.NotifyStraightKey(false))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, events[:2])
}

func TestEngine_ParameterRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetSpeed(25))
	assert.Equal(t, 25, e.GetSpeed())

	require.NoError(t, e.SetFrequency(700))
	assert.Equal(t, 700, e.GetFrequency())
}

func TestEngine_SendCharacterUnknownRune(t *testing.T) {
	e := newTestEngine(t)
	err := e.SendCharacter('~')
	require.Error(t, err)
	assert.True(t, errors.Is(err, cwerr.ErrNotFound))
}

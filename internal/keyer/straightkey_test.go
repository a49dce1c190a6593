package keyer

import (
	"sync"
	"testing"

	"github.com/kb9vor/cwgen/internal/tonequeue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGen is a minimal ToneEnqueuer recording every enqueued tone.
type fakeGen struct {
	mu          sync.Mutex
	tones       []tonequeue.Tone
	freq        int
	slopeLenUS  int64
	quantumUS   int64
	sampleBased bool
}

func (f *fakeGen) Enqueue(t tonequeue.Tone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tones = append(f.tones, t)
	return nil
}
func (f *fakeGen) Frequency() int        { return f.freq }
func (f *fakeGen) SlopeLenUS() int64     { return f.slopeLenUS }
func (f *fakeGen) QuantumUS() int64      { return f.quantumUS }
func (f *fakeGen) SampleBased() bool     { return f.sampleBased }

func newFakeGen() *fakeGen {
	return &fakeGen{freq: 600, slopeLenUS: 2000, quantumUS: 100, sampleBased: true}
}

func TestStraightKey_ClosedEnqueuesRisingThenForever(t *testing.T) {
	g := newFakeGen()
	k := NewStraightKey(g)

	require.NoError(t, k.NotifyEvent(true))

	require.Len(t, g.tones, 2)
	assert.Equal(t, tonequeue.RisingOnly, g.tones[0].Slope)
	assert.True(t, g.tones[1].Forever)
	assert.Equal(t, 600, g.tones[1].FrequencyHz)
}

func TestStraightKey_OpenOnSampleBasedSink_EnqueuesFallingThenForeverSilence(t *testing.T) {
	g := newFakeGen()
	k := NewStraightKey(g)
	require.NoError(t, k.NotifyEvent(true))
	require.NoError(t, k.NotifyEvent(false))

	require.Len(t, g.tones, 4)
	assert.Equal(t, tonequeue.FallingOnly, g.tones[2].Slope)
	assert.True(t, g.tones[3].Forever)
	assert.Equal(t, 0, g.tones[3].FrequencyHz)
}

func TestStraightKey_OpenOnConsoleSink_EnqueuesSingleQuantumTone(t *testing.T) {
	g := newFakeGen()
	g.sampleBased = false
	k := NewStraightKey(g)
	require.NoError(t, k.NotifyEvent(true))
	require.NoError(t, k.NotifyEvent(false))

	require.Len(t, g.tones, 4)
	assert.False(t, g.tones[3].Forever)
	assert.Equal(t, g.quantumUS, g.tones[3].DurationUS)
}

func TestStraightKey_Idempotence_DuplicateEventEnqueuesNothing(t *testing.T) {
	g := newFakeGen()
	k := NewStraightKey(g)
	require.NoError(t, k.NotifyEvent(true))
	n := len(g.tones)

	require.NoError(t, k.NotifyEvent(true)) // duplicate
	assert.Len(t, g.tones, n)
}

func TestStraightKey_KeyingCallback(t *testing.T) {
	g := newFakeGen()
	k := NewStraightKey(g)

	var events []bool
	k.RegisterKeyingCallback(func(closed bool) { events = append(events, closed) })

	require.NoError(t, k.NotifyEvent(true))
	require.NoError(t, k.NotifyEvent(false))
	require.NoError(t, k.NotifyEvent(false)) // duplicate, no callback

	assert.Equal(t, []bool{true, false}, events)
}

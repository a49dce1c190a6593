package tonequeue

import (
	"errors"
	"testing"

	"github.com/kb9vor/cwgen/internal/cwerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEnqueueDequeue_Basic(t *testing.T) {
	q := New(4)
	assert.Equal(t, Idle, q.State())

	require.NoError(t, q.Enqueue(Tone{FrequencyHz: 600, DurationUS: 100}))
	assert.Equal(t, Busy, q.State())
	assert.Equal(t, 1, q.Length())

	r := q.Dequeue()
	require.False(t, r.Empty)
	assert.Equal(t, 600, r.Tone.FrequencyHz)
	assert.Equal(t, Idle, q.State())

	r2 := q.Dequeue()
	assert.True(t, r2.Empty)
}

func TestEnqueue_RejectsWhenRingFull(t *testing.T) {
	q := New(4)

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(Tone{DurationUS: 1}))
	}

	err := q.Enqueue(Tone{DurationUS: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cwerr.ErrAgain))

	q.Dequeue()
	assert.NoError(t, q.Enqueue(Tone{DurationUS: 1}))
}

func TestIsFull_ReportsHighWaterMark(t *testing.T) {
	q := New(4)
	q.SetHighWaterMark(2)

	require.NoError(t, q.Enqueue(Tone{DurationUS: 1}))
	assert.False(t, q.IsFull())
	require.NoError(t, q.Enqueue(Tone{DurationUS: 1}))
	assert.True(t, q.IsFull())

	// Enqueue admission is gated on ring capacity, not high-water.
	assert.NoError(t, q.Enqueue(Tone{DurationUS: 1}))
}

func TestEnqueue_RejectsInvalid(t *testing.T) {
	q := New(4)
	err := q.Enqueue(Tone{DurationUS: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cwerr.ErrInvalid))
	assert.Zero(t, q.Length())
}

func TestForeverTone_NotAdvancedByDequeue(t *testing.T) {
	q := New(4)
	require.NoError(t, q.Enqueue(Tone{FrequencyHz: 700, DurationUS: 100, Forever: true}))

	for i := 0; i < 5; i++ {
		r := q.Dequeue()
		require.False(t, r.Empty)
		assert.Equal(t, 700, r.Tone.FrequencyHz)
		assert.Equal(t, 1, q.Length())
	}
}

func TestForeverTone_WithQueuedFollowers_PlaysOnceThenAdvances(t *testing.T) {
	// A forever hold that already has tones queued behind it (the key
	// was released while the rising slope was still at the head) must
	// not starve them: it plays one final time and is then dropped.
	q := New(8)
	require.NoError(t, q.Enqueue(Tone{FrequencyHz: 700, DurationUS: 2000, Slope: RisingOnly}))
	require.NoError(t, q.Enqueue(Tone{FrequencyHz: 700, DurationUS: 100, Forever: true}))
	require.NoError(t, q.Enqueue(Tone{FrequencyHz: 700, DurationUS: 2000, Slope: FallingOnly}))

	assert.Equal(t, RisingOnly, q.Dequeue().Tone.Slope)
	forever := q.Dequeue()
	assert.True(t, forever.Tone.Forever)
	assert.Equal(t, FallingOnly, q.Dequeue().Tone.Slope)
	assert.True(t, q.Dequeue().Empty)
}

func TestForeverTone_OverwrittenByNonForever(t *testing.T) {
	q := New(4)
	require.NoError(t, q.Enqueue(Tone{FrequencyHz: 700, DurationUS: 100, Forever: true}))
	require.NoError(t, q.Enqueue(Tone{FrequencyHz: 0, DurationUS: 50}))

	assert.Equal(t, 1, q.Length())
	r := q.Dequeue()
	assert.Equal(t, 0, r.Tone.FrequencyHz)
	assert.False(t, r.Tone.Forever)
}

func TestLengthInvariant_Rapid(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(tt, "capacity")
		q := New(capacity)

		var shadow []Tone

		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 1, 200).Draw(tt, "ops")
		for _, op := range ops {
			if op == 0 {
				tone := Tone{FrequencyHz: 600, DurationUS: 1}
				err := q.Enqueue(tone)
				if err == nil {
					shadow = append(shadow, tone)
				}
			} else if len(shadow) > 0 {
				r := q.Dequeue()
				require.False(tt, r.Empty)
				assert.Equal(tt, shadow[0], r.Tone)
				shadow = shadow[1:]
			} else {
				r := q.Dequeue()
				assert.True(tt, r.Empty)
			}
			assert.Equal(tt, len(shadow), q.Length())
		}
	})
}

func TestFIFOOrdering_SingleProducer(t *testing.T) {
	// Enqueues from a single goroutine must dequeue in the same order
	// they were submitted.
	q := New(1024)
	const n = 500
	for i := 0; i < n; i++ {
		require.NoError(t, q.Enqueue(Tone{FrequencyHz: i + 1, DurationUS: 1}))
	}
	for i := 0; i < n; i++ {
		r := q.Dequeue()
		require.False(t, r.Empty)
		assert.Equal(t, i+1, r.Tone.FrequencyHz)
	}
}

package audiosink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullSink_OpenReturnsNominalRate(t *testing.T) {
	s := NewNullSink(0)
	rate, err := s.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
}

func TestNullSink_WriteNeverErrors(t *testing.T) {
	s := NewNullSink(48000)
	assert.NoError(t, s.Write(make([]int16, 256)))
	assert.NoError(t, s.Silence())
	assert.NoError(t, s.Close())
}

func TestConsoleSink_SilenceAndWrite(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)
	_, err := s.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Write(make([]int16, 64))) // all zero -> silence line
	assert.Contains(t, buf.String(), ".")

	buf.Reset()
	loud := make([]int16, 64)
	for i := range loud {
		loud[i] = 32000
	}
	require.NoError(t, s.Write(loud))
	assert.Contains(t, buf.String(), "#")
}

func TestConsoleSink_SetToneFiltersToTransitions(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)

	s.SetTone(600)
	s.SetTone(600)
	s.SetTone(600)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	s.SetTone(0)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	s.SetTone(0)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

var _ Sink = (*NullSink)(nil)
var _ Sink = (*ConsoleSink)(nil)

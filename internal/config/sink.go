package config

import (
	"fmt"
	"os"

	"github.com/kb9vor/cwgen/internal/audiosink"
	"github.com/kb9vor/cwgen/internal/audiosink/portaudiosink"
)

// BuildSink constructs the audio sink the Sink section selects. Both
// command front-ends use this, so a config's sink kind means the same
// thing to each of them.
func BuildSink(cfg Config) (audiosink.Sink, error) {
	switch cfg.Sink.Kind {
	case "", "console":
		return audiosink.NewConsoleSink(os.Stdout), nil
	case "null":
		return audiosink.NewNullSink(8000), nil
	case "portaudio":
		return portaudiosink.New(cfg.Sink.BufferSamples), nil
	default:
		return nil, fmt.Errorf("config: unknown sink kind %q", cfg.Sink.Kind)
	}
}

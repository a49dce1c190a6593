// Command cwgen renders arbitrary text as Morse-code audio, taking it
// from the --text flag or, when that is empty, from stdin, and writing
// to the configured sink.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kb9vor/cwgen/cw"
	"github.com/kb9vor/cwgen/internal/config"
	"github.com/kb9vor/cwgen/internal/logx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cwgen:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = pflag.StringP("config", "c", "", "path to a YAML config file")
		speed      = pflag.IntP("speed", "s", 0, "sending speed in wpm (0 = use config/default)")
		frequency  = pflag.IntP("frequency", "f", 0, "sidetone frequency in Hz")
		volume     = pflag.IntP("volume", "v", 0, "volume percent")
		sinkKind   = pflag.String("sink", "", `audio sink: "null", "console", or "portaudio"`)
		device     = pflag.String("device", "", "output device name (portaudio sink only)")
		text       = pflag.StringP("text", "t", "", "text to send (default: read stdin)")
	)
	pflag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyOverrides(&cfg, *speed, *frequency, *volume, *sinkKind, *device)

	trace, err := logx.OpenTraceFile(cfg.Log.Dir, cfg.Log.FilePattern)
	if err != nil {
		return err
	}
	if trace != nil {
		defer trace.Close()
	}
	logger := logx.WithTraceFile(cfg.Log.Level, trace)

	sink, err := config.BuildSink(cfg)
	if err != nil {
		return err
	}

	engine, err := cw.New(cw.Options{
		Sink:          sink,
		Device:        cfg.Sink.Device,
		BufferSamples: cfg.Sink.BufferSamples,
		SpeedWPM:      cfg.Speed,
		Frequency:     cfg.Frequency,
		Volume:        cfg.Volume,
		Gap:           cfg.Gap,
		Weighting:     cfg.Weighting,
	})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	logger.Info("generator started", "speed_wpm", cfg.Speed, "sink", cfg.Sink.Kind)

	body := *text
	if body == "" {
		data, err := readAllStdin()
		if err != nil {
			return err
		}
		body = data
	}

	if err := engine.SendString(body); err != nil {
		logger.Error("send failed", "err", err)
	}
	engine.WaitForToneQueue()

	return engine.Stop(5 * time.Second)
}

func applyOverrides(cfg *config.Config, speed, frequency, volume int, sinkKind, device string) {
	if speed > 0 {
		cfg.Speed = speed
	}
	if frequency > 0 {
		cfg.Frequency = frequency
	}
	if volume > 0 {
		cfg.Volume = volume
	}
	if sinkKind != "" {
		cfg.Sink.Kind = sinkKind
	}
	if device != "" {
		cfg.Sink.Device = device
	}
}

func readAllStdin() (string, error) {
	scanner := bufio.NewScanner(os.Stdin)
	var b strings.Builder
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte(' ')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return b.String(), nil
}

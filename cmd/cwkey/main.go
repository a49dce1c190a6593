// Command cwkey drives a live keying source — a terminal space bar,
// or (with GPIO hardware) a straight key or iambic paddle — into an
// audio sink in real time.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kb9vor/cwgen/cw"
	"github.com/kb9vor/cwgen/internal/config"
	"github.com/kb9vor/cwgen/internal/hwkey"
	"github.com/kb9vor/cwgen/internal/logx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cwkey:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = pflag.StringP("config", "c", "", "path to a YAML config file")
		mode       = pflag.String("mode", "", `keying source: "term", "straight", or "paddle"`)
		speed      = pflag.IntP("speed", "s", 0, "sending speed in wpm")
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
	if *mode != "" {
		cfg.Keying.Mode = *mode
	}
	if *speed > 0 {
		cfg.Speed = *speed
	}

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
	if cfg.Keying.CurtisB {
		_ = engine.EnableCurtisModeB()
	}

	closer, err := attachKeySource(ctx, cfg, engine)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	logger.Info("keying source attached", "mode", cfg.Keying.Mode)
	<-ctx.Done()

	return engine.Stop(2 * time.Second)
}

type closer interface{ Close() error }

func attachKeySource(ctx context.Context, cfg config.Config, engine *cw.Engine) (closer, error) {
	switch cfg.Keying.Mode {
	case "", "term":
		return hwkey.NewTermKey(ctx, engine)
	case "straight":
		return hwkey.NewGPIOStraightKey(hwkey.GPIOStraightKeyOptions{
			Chip:      cfg.Keying.GPIOChip,
			Line:      cfg.Keying.KeyLine,
			ActiveLow: cfg.Keying.ActiveLow,
			Debounce:  5 * time.Millisecond,
		}, engine)
	case "paddle":
		return hwkey.NewGPIOPaddle(ctx, hwkey.GPIOPaddleOptions{
			Chip:      cfg.Keying.GPIOChip,
			DotLine:   cfg.Keying.DotLine,
			DashLine:  cfg.Keying.DashLine,
			ActiveLow: cfg.Keying.ActiveLow,
			Debounce:  5 * time.Millisecond,
		}, engine)
	default:
		return nil, fmt.Errorf("unknown keying mode %q", cfg.Keying.Mode)
	}
}

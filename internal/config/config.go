// Package config loads the YAML configuration document the demo
// binaries (cmd/cwgen, cmd/cwkey) use for default engine parameters.
// The core library (timing, tonequeue, audiosink, generator, keyer,
// cw) takes no dependency on this package; only the outer command
// front-ends load it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape for a demo binary's defaults.
type Config struct {
	Sink struct {
		Kind          string `yaml:"kind"` // "null", "console", "portaudio"
		Device        string `yaml:"device"`
		BufferSamples int    `yaml:"buffer_samples"`
	} `yaml:"sink"`

	Speed     int `yaml:"speed_wpm"`
	Frequency int `yaml:"frequency_hz"`
	Volume    int `yaml:"volume_percent"`
	Gap       int `yaml:"gap_units"`
	Weighting int `yaml:"weighting_percent"`

	Keying struct {
		Mode      string `yaml:"mode"` // "term", "straight", "paddle"
		GPIOChip  string `yaml:"gpio_chip"`
		DotLine   int    `yaml:"dot_line"`
		DashLine  int    `yaml:"dash_line"`
		KeyLine   int    `yaml:"key_line"`
		ActiveLow bool   `yaml:"active_low"`
		CurtisB   bool   `yaml:"curtis_mode_b"`
	} `yaml:"keying"`

	Log struct {
		Level    string `yaml:"level"`
		Dir      string `yaml:"dir"`
		FilePattern string `yaml:"file_pattern"` // strftime pattern, e.g. "cw-%Y%m%d.log"
	} `yaml:"log"`
}

// Default returns the built-in defaults used when no config file is
// given.
func Default() Config {
	var c Config
	c.Sink.Kind = "console"
	c.Sink.BufferSamples = 1024
	c.Speed = 20
	c.Frequency = 600
	c.Volume = 70
	c.Weighting = 50
	c.Keying.Mode = "term"
	c.Log.Level = "info"
	c.Log.FilePattern = "cwgen-%Y%m%d.log"
	return c
}

// Load reads and parses a YAML config file at path, starting from
// Default() so a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	c := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

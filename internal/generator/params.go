package generator

import (
	"github.com/kb9vor/cwgen/internal/cwerr"
	"github.com/kb9vor/cwgen/internal/timing"
)

// SetSpeed sets the sending speed in words per minute. Rejected
// synchronously (state unchanged) if out of range.
func (g *Generator) SetSpeed(wpm int) error {
	if err := timing.ValidateSpeed(wpm); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.SpeedWPM = wpm
	g.inSync = false
	return nil
}

// GetSpeed returns the current sending speed.
func (g *Generator) GetSpeed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.params.SpeedWPM
}

// SetFrequency sets the sidetone frequency in Hz (0 renders silence).
func (g *Generator) SetFrequency(hz int) error {
	if err := timing.ValidateFrequency(hz); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frequency = hz
	return nil
}

func (g *Generator) GetFrequency() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frequency
}

// SetVolume sets the volume as a percentage, 0-100.
func (g *Generator) SetVolume(percent int) error {
	if err := timing.ValidateVolume(percent); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.volumePct = percent
	g.volumeAbs = volumeAbs(percent)
	g.inSync = false
	return nil
}

func (g *Generator) GetVolume() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.volumePct
}

// SetGap sets the Farnsworth gap in dot-units.
func (g *Generator) SetGap(units int) error {
	if err := timing.ValidateGap(units); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.GapUnits = units
	g.inSync = false
	return nil
}

func (g *Generator) GetGap() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.params.GapUnits
}

// SetWeighting sets the dot:dash weighting percentage, 50 = even.
func (g *Generator) SetWeighting(percent int) error {
	if err := timing.ValidateWeighting(percent); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.Weighting = percent
	g.inSync = false
	return nil
}

func (g *Generator) GetWeighting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.params.Weighting
}

// SetToneSlope sets the envelope shape and the slope length in
// microseconds. Passing -1 for either argument means "leave that
// parameter unchanged"; passing both -1 is a no-op. Setting shape to
// Rectangular together with a positive lenUS is rejected as INVALID;
// when Rectangular is selected, the slope length is always forced to
// zero even if lenUS was -1.
func (g *Generator) SetToneSlope(shape Shape, lenUS int64) error {
	if shape == Rectangular && lenUS > 0 {
		return cwerr.New(cwerr.Invalid, "rectangular slope cannot have a positive length (%d)", lenUS)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	newShape := g.shape
	if shape != -1 {
		newShape = shape
	}
	newLen := g.slopeLenUS
	if lenUS != -1 {
		newLen = lenUS
	}
	if newShape == Rectangular {
		newLen = 0
	}

	g.shape = newShape
	g.slopeLenUS = newLen
	g.inSync = false
	return nil
}

func (g *Generator) GetToneSlope() (Shape, int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shape, g.slopeLenUS
}

// SlopeTableLength returns the number of entries in the current
// precomputed slope-amplitudes table (0 for Rectangular), syncing
// parameters first if needed.
func (g *Generator) SlopeTableLength() (int, error) {
	if _, err := g.sync(); err != nil {
		return 0, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slopeTable), nil
}

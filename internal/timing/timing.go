// Package timing computes the dot, dash, and space durations derived
// from speed (wpm), weighting, and Farnsworth gap, per the PARIS
// calibration: the word "PARIS " sent at N wpm takes exactly 50
// dot-units, or 60/N seconds.
package timing

import "github.com/kb9vor/cwgen/internal/cwerr"

// Speed, frequency, volume, gap and weighting ranges accepted by the
// setters and by Sync.
const (
	MinSpeedWPM = 4
	MaxSpeedWPM = 60

	MinFrequencyHz = 0
	MaxFrequencyHz = 4000

	MinVolumePercent = 0
	MaxVolumePercent = 100

	MinGapUnits = 0
	MaxGapUnits = 60

	MinWeightingPercent = 20
	MaxWeightingPercent = 80
)

// Params holds the user-level knobs that durations are derived from.
type Params struct {
	SpeedWPM   int
	GapUnits   int
	Weighting  int // percent, 50 = even dot/dash ratio
}

// Durations holds the derived microsecond lengths consumed by the
// generator's character-to-tone translation.
type Durations struct {
	DotLenUS        int64
	DashLenUS       int64
	EOMSpaceLenUS   int64 // inter-mark space
	EOCSpaceLenUS   int64 // additional space to reach end-of-character total
	EOWSpaceLenUS   int64 // additional space on top of EOC to reach end-of-word total
	AdditionalSpaceUS int64 // gap * unit, Farnsworth inter-character padding
	AdjustmentSpaceUS int64 // 7/3 * additional, Farnsworth word-end padding
}

// ValidateSpeed, ValidateGap, ValidateWeighting reject out-of-range
// setter arguments synchronously, before any parameter is applied.

func ValidateSpeed(wpm int) error {
	if wpm < MinSpeedWPM || wpm > MaxSpeedWPM {
		return cwerr.New(cwerr.Invalid, "speed %d wpm out of range [%d,%d]", wpm, MinSpeedWPM, MaxSpeedWPM)
	}
	return nil
}

func ValidateFrequency(hz int) error {
	if hz < MinFrequencyHz || hz > MaxFrequencyHz {
		return cwerr.New(cwerr.Invalid, "frequency %d Hz out of range [%d,%d]", hz, MinFrequencyHz, MaxFrequencyHz)
	}
	return nil
}

func ValidateVolume(percent int) error {
	if percent < MinVolumePercent || percent > MaxVolumePercent {
		return cwerr.New(cwerr.Invalid, "volume %d%% out of range [%d,%d]", percent, MinVolumePercent, MaxVolumePercent)
	}
	return nil
}

func ValidateGap(units int) error {
	if units < MinGapUnits || units > MaxGapUnits {
		return cwerr.New(cwerr.Invalid, "gap %d out of range [%d,%d]", units, MinGapUnits, MaxGapUnits)
	}
	return nil
}

func ValidateWeighting(percent int) error {
	if percent < MinWeightingPercent || percent > MaxWeightingPercent {
		return cwerr.New(cwerr.Invalid, "weighting %d%% out of range [%d,%d]", percent, MinWeightingPercent, MaxWeightingPercent)
	}
	return nil
}

// Sync recomputes the derived durations from Params. It is pure: the
// caller's generator calls this whenever a parameter changed and
// caches the result, rather than recomputing on every tone.
func Sync(p Params) (Durations, error) {
	if err := ValidateSpeed(p.SpeedWPM); err != nil {
		return Durations{}, err
	}
	if err := ValidateGap(p.GapUnits); err != nil {
		return Durations{}, err
	}
	if err := ValidateWeighting(p.Weighting); err != nil {
		return Durations{}, err
	}

	unit := int64(1_200_000) / int64(p.SpeedWPM)
	weightAdj := (2 * int64(p.Weighting-50) * unit) / 100

	dotLen := unit + weightAdj
	dashLen := 3 * dotLen

	eom := unit - (28*weightAdj)/22
	eoc := 3*unit - eom
	eow := 7*unit - eom - eoc

	additional := int64(p.GapUnits) * unit
	adjustment := (7 * additional) / 3

	return Durations{
		DotLenUS:          dotLen,
		DashLenUS:         dashLen,
		EOMSpaceLenUS:     eom,
		EOCSpaceLenUS:     eoc,
		EOWSpaceLenUS:     eow,
		AdditionalSpaceUS: additional,
		AdjustmentSpaceUS: adjustment,
	}, nil
}

// UnitUS returns the base dot-unit (1_200_000 / wpm microseconds)
// without validating or computing the rest of Durations. Useful for
// tests checking the PARIS calibration directly.
func UnitUS(wpm int) int64 {
	return int64(1_200_000) / int64(wpm)
}

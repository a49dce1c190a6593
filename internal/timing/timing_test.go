package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSync_EvenWeightingZeroGap(t *testing.T) {
	for _, wpm := range []int{4, 13, 20, 60} {
		d, err := Sync(Params{SpeedWPM: wpm, GapUnits: 0, Weighting: 50})
		require.NoError(t, err)

		unit := UnitUS(wpm)
		assert.Equal(t, unit, d.DotLenUS)
		assert.Equal(t, 3*unit, d.DashLenUS)
		assert.Equal(t, unit, d.EOMSpaceLenUS)
		assert.Equal(t, 2*unit, d.EOCSpaceLenUS)
		assert.Equal(t, 4*unit, d.EOWSpaceLenUS)
		assert.Zero(t, d.AdditionalSpaceUS)
		assert.Zero(t, d.AdjustmentSpaceUS)
	}
}

func TestSync_ParisCalibration(t *testing.T) {
	// "PARIS " at N wpm is exactly 50 dot-units = 60/N seconds on air,
	// with weighting=50 and gap=0 (the calibration convention).
	for _, wpm := range []int{5, 10, 20, 40} {
		d, err := Sync(Params{SpeedWPM: wpm, GapUnits: 0, Weighting: 50})
		require.NoError(t, err)

		// P A R I S <space> = .--. .- .-. .. ... (standard word-level
		// spacing already included) -> 50 units total is the textbook
		// identity; verify the dot unit alone reproduces 60/wpm seconds.
		totalUnitsUS := 50 * d.DotLenUS
		expectedUS := int64(60_000_000) / int64(wpm) * 1
		// Allow integer-division slack from Sync's internal truncation.
		assert.InDelta(t, float64(expectedUS), float64(totalUnitsUS), float64(wpm))
	}
}

func TestValidateSpeed(t *testing.T) {
	assert.NoError(t, ValidateSpeed(4))
	assert.NoError(t, ValidateSpeed(60))
	assert.Error(t, ValidateSpeed(3))
	assert.Error(t, ValidateSpeed(61))
}

func TestValidateFrequency(t *testing.T) {
	assert.NoError(t, ValidateFrequency(0))
	assert.NoError(t, ValidateFrequency(4000))
	assert.Error(t, ValidateFrequency(-1))
	assert.Error(t, ValidateFrequency(4001))
}

func TestValidateWeighting(t *testing.T) {
	assert.NoError(t, ValidateWeighting(20))
	assert.NoError(t, ValidateWeighting(80))
	assert.Error(t, ValidateWeighting(19))
	assert.Error(t, ValidateWeighting(81))
}

// RapidSync checks invariants that must hold for every valid
// (speed, gap, weighting) triple: dash is 3x dot, and the
// end-of-character total equals exactly 3 dot-units worth of the base
// unit (the "3 units" rule independent of weighting).
func TestSyncInvariants_Rapid(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		wpm := rapid.IntRange(MinSpeedWPM, MaxSpeedWPM).Draw(tt, "wpm")
		gap := rapid.IntRange(MinGapUnits, MaxGapUnits).Draw(tt, "gap")
		weighting := rapid.IntRange(MinWeightingPercent, MaxWeightingPercent).Draw(tt, "weighting")

		d, err := Sync(Params{SpeedWPM: wpm, GapUnits: gap, Weighting: weighting})
		require.NoError(tt, err)

		assert.Equal(tt, 3*d.DotLenUS, d.DashLenUS)
		assert.Equal(tt, 3*UnitUS(wpm), d.EOMSpaceLenUS+d.EOCSpaceLenUS)
		// EOWSpaceLenUS is defined as the remainder of the 7-unit
		// end-of-word total after EOM+EOC (which is always exactly 3
		// units), so it always comes out to 4 units regardless of
		// weighting even though EOM and EOC individually shift with it.
		assert.Equal(tt, 4*UnitUS(wpm), d.EOWSpaceLenUS)
		assert.Equal(tt, 7*UnitUS(wpm), d.EOMSpaceLenUS+d.EOCSpaceLenUS+d.EOWSpaceLenUS)
		assert.Equal(tt, (7*d.AdditionalSpaceUS)/3, d.AdjustmentSpaceUS)
	})
}

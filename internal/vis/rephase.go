package vis

import (
	"math"

	"github.com/arraydata/visibility.report/internal/units"
)

// phaseFactor returns the scalar rotation exp(-2πi·f·Δw/c) that re-refers
// a sample to a new phase centre, where Δw is the w delta in metres
// between the new and old centres for the sample's baseline.
func phaseFactor(freqHz, dWMetres float64) complex128 {
	angle := -2 * math.Pi * freqHz * dWMetres / units.SpeedOfLightMPS
	s, c := math.Sincos(angle)
	return complex(c, s)
}

// rotateRow multiplies each channel's polarisations in one (time,
// baseline) row by that channel's phase factor. A scalar complex
// rotation, not a Jones operation: all four polarisations turn by the
// same angle.
func rotateRow(data []complex128, freqsHz []float64, dWMetres float64) {
	for c, f := range freqsHz {
		factor := phaseFactor(f, dWMetres)
		base := c * NumPols
		data[base] *= factor
		data[base+1] *= factor
		data[base+2] *= factor
		data[base+3] *= factor
	}
}

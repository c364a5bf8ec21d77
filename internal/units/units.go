// Package units provides shared physical constants and unit conversions
// for angles and frequencies.
package units

import "math"

// Physical constants.
const (
	// SpeedOfLightMPS is the speed of light in a vacuum (metres per second).
	SpeedOfLightMPS = 299792458.0

	// SecondsPerDay is the length of a day in SI seconds.
	SecondsPerDay = 86400.0
)

// Angle unit identifiers accepted in configuration files.
const (
	Radians = "rad"
	Degrees = "deg"
)

// ValidAngleUnits contains all valid angle unit values.
var ValidAngleUnits = []string{Radians, Degrees}

// IsValidAngleUnit checks if the given unit is in the list of valid units.
func IsValidAngleUnit(unit string) bool {
	for _, validUnit := range ValidAngleUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ToRadians converts an angle in the given unit to radians.
// Unknown units are passed through unchanged.
func ToRadians(angle float64, unit string) float64 {
	switch unit {
	case Degrees:
		return angle * math.Pi / 180.0
	default:
		return angle
	}
}

// WavelengthMetres returns the wavelength of a frequency in metres.
// A zero or negative frequency returns 0 rather than Inf so callers can
// treat the result as "no scaling".
func WavelengthMetres(freqHz float64) float64 {
	if freqHz <= 0 {
		return 0
	}
	return SpeedOfLightMPS / freqHz
}

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad < 0 {
		rad += 2 * math.Pi
	}
	return rad
}

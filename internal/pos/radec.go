package pos

import (
	"fmt"
	"math"

	"github.com/arraydata/visibility.report/internal/units"
)

// RADec is a (right ascension, declination) pair in radians.
//
// The frame (mean J2000 vs apparent-at-epoch) is not encoded in the type;
// functions that convert between frames say so in their names and callers
// are expected to keep track. The astro package logs every frame conversion.
type RADec struct {
	// RA is the right ascension in radians.
	RA float64
	// Dec is the declination in radians.
	Dec float64
}

// NewRADec builds a RADec from values in radians.
func NewRADec(raRad, decRad float64) RADec {
	return RADec{RA: raRad, Dec: decRad}
}

// RADecFromDegrees builds a RADec from values in degrees.
func RADecFromDegrees(raDeg, decDeg float64) RADec {
	return RADec{RA: raDeg * math.Pi / 180.0, Dec: decDeg * math.Pi / 180.0}
}

// ToHADec converts to hour angle coordinates given a local sidereal time.
func (r RADec) ToHADec(lstRad float64) HADec {
	return HADec{HA: units.NormalizeAngle(lstRad - r.RA), Dec: r.Dec}
}

// RADecFromHADec converts hour angle coordinates back to RADec given a
// local sidereal time.
func RADecFromHADec(hd HADec, lstRad float64) RADec {
	return RADec{RA: units.NormalizeAngle(lstRad - hd.HA), Dec: hd.Dec}
}

// ToLMN returns the direction cosines of r relative to a phase centre.
//
// Derived using "Coordinate transformations" on page 388 of Synthesis
// Imaging in Radio Astronomy II.
func (r RADec) ToLMN(phaseCentre RADec) LMN {
	dRA := r.RA - phaseCentre.RA
	sDRA, cDRA := math.Sincos(dRA)
	sDec, cDec := math.Sincos(r.Dec)
	pcSDec, pcCDec := math.Sincos(phaseCentre.Dec)
	return LMN{
		L: cDec * sDRA,
		M: sDec*pcCDec - cDec*pcSDec*cDRA,
		N: sDec*pcSDec + cDec*pcCDec*cDRA,
	}
}

// Separation returns the angular distance between two directions in radians.
// Uses the atan2 form, which is accurate for both small and large angles.
func (r RADec) Separation(b RADec) float64 {
	sA, cA := math.Sincos(r.Dec)
	sB, cB := math.Sincos(b.Dec)
	sD, cD := math.Sincos(b.RA - r.RA)
	y := math.Hypot(cB*sD, cA*sB-sA*cB*cD)
	x := sA*sB + cA*cB*cD
	return math.Atan2(y, x)
}

// UnitVector returns the direction as a unit vector with x towards
// (RA=0, Dec=0), y towards RA=90° and z towards the north celestial pole.
func (r RADec) UnitVector() [3]float64 {
	sRA, cRA := math.Sincos(r.RA)
	sDec, cDec := math.Sincos(r.Dec)
	return [3]float64{cDec * cRA, cDec * sRA, sDec}
}

// RADecFromUnitVector is the inverse of UnitVector. The vector need not be
// normalised.
func RADecFromUnitVector(v [3]float64) RADec {
	ra := math.Atan2(v[1], v[0])
	dec := math.Atan2(v[2], math.Hypot(v[0], v[1]))
	return RADec{RA: units.NormalizeAngle(ra), Dec: dec}
}

func (r RADec) String() string {
	raDeg := r.RA * 180.0 / math.Pi
	decDeg := r.Dec * 180.0 / math.Pi
	return fmt.Sprintf("(%.4f°, %.4f°) => (%s, %s)",
		raDeg, decDeg, units.DegreesToHMS(raDeg), units.DegreesToDMS(decDeg))
}

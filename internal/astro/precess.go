package astro

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/arraydata/visibility.report/internal/pos"
	"github.com/arraydata/visibility.report/internal/units"
)

// PrecessionInfo captures everything needed to compute UVW coordinates in
// the mean J2000 frame for one timestep: the rotation from the true frame
// of date back to J2000, the phase centre expressed as a J2000 hour
// angle, and the sidereal times and array latitude in both frames.
type PrecessionInfo struct {
	// Epoch is the timestep this info was computed for.
	Epoch Epoch

	// LMST is the local mean sidereal time of the epoch, radians.
	LMST float64

	// LMSTJ2000 is the LMST precessed into the J2000 frame, radians.
	LMSTJ2000 float64

	// LatitudeJ2000 is the array latitude precessed into the J2000
	// frame, radians.
	LatitudeJ2000 float64

	// HADecJ2000 is the phase centre as a J2000 hour angle and
	// declination, the pointing to use for J2000-frame UVWs.
	HADecJ2000 pos.HADec

	// rot takes true coordinates of date to mean J2000 coordinates.
	rot [3][3]float64
}

// PrecessTime prepares the J2000 precession of one timestep for an array
// at the given location observing the given mean J2000 phase centre.
//
// Antenna positions are surveyed in the frame of date while catalogue
// phase centres live in J2000, so one side has to move. Following cotter,
// the array is precessed back to J2000 rather than the phase centre
// forward.
func PrecessTime(e Epoch, phaseCentre pos.RADec, loc pos.LatLonAlt) (*PrecessionInfo, error) {
	if err := checkValidity(e); err != nil {
		return nil, err
	}
	lmst, err := LMST(e, loc.LongitudeRad)
	if err != nil {
		return nil, err
	}

	t := e.JulianCenturiesTT()

	// The phase centre picks up annual aberration in the mean frame.
	aber := pos.RADecFromUnitVector(aberrate(phaseCentre.UnitVector(), earthVelocity(t)))

	var inv mat.Dense
	inv.CloneFrom(prenutMatrix(t).T())

	info := &PrecessionInfo{Epoch: e, LMST: lmst}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			info.rot[i][j] = inv.At(i, j)
		}
	}

	// Treat (lmst, latitude) as a direction and rotate it back to J2000
	// to find the precessed sidereal time and array latitude.
	lmstJ2000 := pos.RADecFromUnitVector(applyMatrix(&inv, pos.RADec{RA: lmst, Dec: loc.LatitudeRad}.UnitVector()))
	info.LMSTJ2000 = lmstJ2000.RA
	info.LatitudeJ2000 = lmstJ2000.Dec
	info.HADecJ2000 = pos.HADec{
		HA:  units.NormalizeAngle(info.LMSTJ2000 - aber.RA),
		Dec: aber.Dec,
	}
	return info, nil
}

// PrecessXYZ rotates one local-equatorial antenna position from the frame
// of date into the J2000 frame.
func (p *PrecessionInfo) PrecessXYZ(xyz pos.XYZ) pos.XYZ {
	sep, cep := math.Sincos(p.LMST)
	s2000, c2000 := math.Sincos(p.LMSTJ2000)

	// Rotate to the frame with the x axis at zero RA.
	xpr := cep*xyz.X - sep*xyz.Y
	ypr := sep*xyz.X + cep*xyz.Y
	zpr := xyz.Z

	xpr2 := p.rot[0][0]*xpr + p.rot[0][1]*ypr + p.rot[0][2]*zpr
	ypr2 := p.rot[1][0]*xpr + p.rot[1][1]*ypr + p.rot[1][2]*zpr
	zpr2 := p.rot[2][0]*xpr + p.rot[2][1]*ypr + p.rot[2][2]*zpr

	// Rotate back with the x axis at the precessed sidereal time.
	return pos.XYZ{
		X: c2000*xpr2 + s2000*ypr2,
		Y: -s2000*xpr2 + c2000*ypr2,
		Z: zpr2,
	}
}

// PrecessXYZs rotates a whole layout of antenna positions into J2000.
func (p *PrecessionInfo) PrecessXYZs(xyzs []pos.XYZ) []pos.XYZ {
	out := make([]pos.XYZ, len(xyzs))
	for i, xyz := range xyzs {
		out[i] = p.PrecessXYZ(xyz)
	}
	return out
}

package astro

import (
	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/arraydata/visibility.report/internal/units"
)

// GMST returns Greenwich mean sidereal time in radians, range [0, 2π).
// UT1 is approximated by UTC, which costs under a tenth of an arcsecond
// of hour angle, far below the accuracy of the reduction model.
func GMST(e Epoch) (float64, error) {
	if err := checkValidity(e); err != nil {
		return 0, err
	}
	return units.NormalizeAngle(satellite.ThetaG_JD(e.JDUTC())), nil
}

// LMST returns local mean sidereal time in radians at the given east
// longitude, range [0, 2π).
func LMST(e Epoch, longitudeRad float64) (float64, error) {
	gmst, err := GMST(e)
	if err != nil {
		return 0, err
	}
	return units.NormalizeAngle(gmst + longitudeRad), nil
}

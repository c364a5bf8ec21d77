package pos

import (
	"fmt"
	"math"

	"github.com/arraydata/visibility.report/internal/units"
)

// HADec is an (hour angle, declination) pair in radians. Hour angle
// increases towards the west, so HADec is tied to a particular sidereal
// time at a particular longitude.
type HADec struct {
	// HA is the hour angle in radians.
	HA float64
	// Dec is the declination in radians.
	Dec float64
}

// NewHADec builds a HADec from values in radians.
func NewHADec(haRad, decRad float64) HADec {
	return HADec{HA: haRad, Dec: decRad}
}

// ToAltAz converts to horizon coordinates for an observer at the given
// geodetic latitude. Altitude is measured from the horizon and azimuth
// from north through east, both in radians.
func (h HADec) ToAltAz(latitudeRad float64) (alt, az float64) {
	sHA, cHA := math.Sincos(h.HA)
	sDec, cDec := math.Sincos(h.Dec)
	sLat, cLat := math.Sincos(latitudeRad)

	sinAlt := sDec*sLat + cDec*cLat*cHA
	if sinAlt > 1 {
		sinAlt = 1
	} else if sinAlt < -1 {
		sinAlt = -1
	}
	alt = math.Asin(sinAlt)

	y := -cDec * sHA
	x := sDec*cLat - cDec*sLat*cHA
	az = units.NormalizeAngle(math.Atan2(y, x))
	return alt, az
}

func (h HADec) String() string {
	return fmt.Sprintf("(ha %.4f°, dec %.4f°)", h.HA*180.0/math.Pi, h.Dec*180.0/math.Pi)
}

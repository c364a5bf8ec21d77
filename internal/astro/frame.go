package astro

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/arraydata/visibility.report/internal/monitoring"
	"github.com/arraydata/visibility.report/internal/pos"
)

// aberrationConstant is the constant of annual aberration in arcseconds.
const aberrationConstant = 20.49552

// earthVelocity returns the Earth's heliocentric velocity in units of c,
// in equatorial rectangular coordinates, for t Julian centuries of TT
// since J2000.0. Low-precision solar theory, good to about 0.01″ of
// aberration.
func earthVelocity(t float64) [3]float64 {
	degToRad := math.Pi / 180.0

	// Sun geometric mean longitude and mean anomaly.
	l := (280.46646 + t*(36000.76983+t*0.0003032)) * degToRad
	m := (357.52911 + t*(35999.05029-t*0.0001537)) * degToRad

	// Equation of centre gives the Sun's true longitude.
	c := (1.914602-t*(0.004817+t*0.000014))*math.Sin(m) +
		(0.019993-t*0.000101)*math.Sin(2*m) +
		0.000289*math.Sin(3*m)
	lambda := l + c*degToRad

	// Orbit eccentricity and longitude of perihelion.
	ecc := 0.016708634 - t*(0.000042037+t*0.0000001267)
	peri := (102.93735 + t*(1.71946+t*0.00046)) * degToRad

	kappa := aberrationConstant * arcsecToRad
	sx := math.Sin(lambda) - ecc*math.Sin(peri)
	cy := math.Cos(lambda) - ecc*math.Cos(peri)

	sEps, cEps := math.Sincos(meanObliquity(t))
	return [3]float64{
		kappa * sx,
		-kappa * cy * cEps,
		-kappa * cy * sEps,
	}
}

// aberrate shifts a unit vector by the annual-aberration displacement for
// the given Earth velocity (first order in v/c, with the component along
// the line of sight projected out).
func aberrate(p, v [3]float64) [3]float64 {
	dot := p[0]*v[0] + p[1]*v[1] + p[2]*v[2]
	q := [3]float64{
		p[0] + v[0] - dot*p[0],
		p[1] + v[1] - dot*p[1],
		p[2] + v[2] - dot*p[2],
	}
	return normalize(q)
}

// unaberrate inverts aberrate by fixed-point iteration. Two passes leave
// a residual far below a microarcsecond.
func unaberrate(p, v [3]float64) [3]float64 {
	q := p
	for i := 0; i < 3; i++ {
		shifted := aberrate(q, v)
		q = normalize([3]float64{
			q[0] + p[0] - shifted[0],
			q[1] + p[1] - shifted[1],
			q[2] + p[2] - shifted[2],
		})
	}
	return q
}

func normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// ToApparent converts a mean J2000 direction to the apparent frame of
// date: annual aberration followed by precession and nutation.
func ToApparent(e Epoch, mean pos.RADec) (pos.RADec, error) {
	if err := checkValidity(e); err != nil {
		return pos.RADec{}, err
	}
	t := e.JulianCenturiesTT()
	v := earthVelocity(t)
	p := aberrate(mean.UnitVector(), v)
	apparent := pos.RADecFromUnitVector(applyMatrix(prenutMatrix(t), p))
	monitoring.Logf("astro: toApparent %s: %v -> %v", e.Time().Format("2006-01-02T15:04:05Z"), mean, apparent)
	return apparent, nil
}

// ToMean converts an apparent direction of date back to the mean J2000
// frame. It is the inverse of ToApparent.
func ToMean(e Epoch, apparent pos.RADec) (pos.RADec, error) {
	if err := checkValidity(e); err != nil {
		return pos.RADec{}, err
	}
	t := e.JulianCenturiesTT()
	var inv mat.Dense
	inv.CloneFrom(prenutMatrix(t).T())
	p := applyMatrix(&inv, apparent.UnitVector())
	mean := pos.RADecFromUnitVector(unaberrate(p, earthVelocity(t)))
	monitoring.Logf("astro: toMean %s: %v -> %v", e.Time().Format("2006-01-02T15:04:05Z"), apparent, mean)
	return mean, nil
}

// LocalAltAz returns the horizon coordinates of a mean J2000 direction as
// seen from an observer location at the given epoch.
func LocalAltAz(e Epoch, mean pos.RADec, loc pos.LatLonAlt) (alt, az float64, err error) {
	apparent, err := ToApparent(e, mean)
	if err != nil {
		return 0, 0, err
	}
	lmst, err := LMST(e, loc.LongitudeRad)
	if err != nil {
		return 0, 0, err
	}
	alt, az = apparent.ToHADec(lmst).ToAltAz(loc.LatitudeRad)
	return alt, az, nil
}

package astro

import "math"

const arcsecToRad = math.Pi / (180.0 * 3600.0)

// nutationTerm is one row of the IAU 1980 nutation series: integer
// multipliers of the five fundamental arguments and the in-phase
// coefficients (with linear time dependence) for nutation in longitude
// and in obliquity, in units of 0.1 milliarcsecond.
type nutationTerm struct {
	nl, nlp, nf, nd, nom int
	psi, psiT            float64
	eps, epsT            float64
}

// nutationTable holds the leading terms of the IAU 1980 series, every
// term with an amplitude of 1.5 mas or more. The truncation error is a
// few milliarcseconds, negligible against the accuracy of the overall
// reduction. Read-only.
var nutationTable = []nutationTerm{
	{0, 0, 0, 0, 1, -171996, -174.2, 92025, 8.9},
	{0, 0, 2, -2, 2, -13187, -1.6, 5736, -3.1},
	{0, 0, 2, 0, 2, -2274, -0.2, 977, -0.5},
	{0, 0, 0, 0, 2, 2062, 0.2, -895, 0.5},
	{0, 1, 0, 0, 0, 1426, -3.4, 54, -0.1},
	{1, 0, 0, 0, 0, 712, 0.1, -7, 0},
	{0, 1, 2, -2, 2, -517, 1.2, 224, -0.6},
	{0, 0, 2, 0, 1, -386, -0.4, 200, 0},
	{1, 0, 2, 0, 2, -301, 0, 129, -0.1},
	{0, -1, 2, -2, 2, 217, -0.5, -95, 0.3},
	{1, 0, 0, -2, 0, -158, 0, -1, 0},
	{0, 0, 2, -2, 1, 129, 0.1, -70, 0},
	{-1, 0, 2, 0, 2, 123, 0, -53, 0},
	{1, 0, 0, 0, 1, 63, 0.1, -33, 0},
	{0, 0, 0, 2, 0, 63, 0, -2, 0},
	{-1, 0, 2, 2, 2, -59, 0, 26, 0},
	{-1, 0, 0, 0, 1, -58, -0.1, 32, 0},
	{1, 0, 2, 0, 1, -51, 0, 27, 0},
	{2, 0, 0, -2, 0, 48, 0, 1, 0},
	{-2, 0, 2, 0, 1, 46, 0, -24, 0},
	{0, 0, 2, 2, 2, -38, 0, 16, 0},
	{2, 0, 2, 0, 2, -31, 0, 13, 0},
	{2, 0, 0, 0, 0, 29, 0, -1, 0},
	{1, 0, 2, -2, 2, 29, 0, -12, 0},
	{0, 0, 2, 0, 0, 26, 0, -1, 0},
	{0, 0, 2, -2, 0, -22, 0, 0, 0},
	{-1, 0, 2, 0, 1, 21, 0, -10, 0},
	{0, 2, 0, 0, 0, 17, -0.1, 0, 0},
	{0, 2, 2, -2, 2, -16, 0.1, 7, 0},
	{-1, 0, 0, 2, 1, 16, 0, -8, 0},
}

// meanObliquity returns the mean obliquity of the ecliptic in radians
// for t Julian centuries of TT since J2000.0 (IAU 1980 expression).
func meanObliquity(t float64) float64 {
	return (84381.448 + t*(-46.8150+t*(-0.00059+t*0.001813))) * arcsecToRad
}

// nutation returns nutation in longitude and obliquity in radians for
// t Julian centuries of TT since J2000.0.
func nutation(t float64) (dpsi, deps float64) {
	// Fundamental arguments of the Sun and Moon (Delaunay variables),
	// IAU 1980 expressions in arcseconds.
	rev := 1296000.0
	l := 485866.733 + t*(1325*rev+715922.633+t*(31.310+t*0.064))
	lp := 1287099.804 + t*(99*rev+1292581.224+t*(-0.577+t*-0.012))
	f := 335778.877 + t*(1342*rev+295263.137+t*(-13.257+t*0.011))
	d := 1072261.307 + t*(1236*rev+1105601.328+t*(-6.891+t*0.019))
	om := 450160.280 + t*(-(5*rev + 482890.539) + t*(7.455+t*0.008))

	l *= arcsecToRad
	lp *= arcsecToRad
	f *= arcsecToRad
	d *= arcsecToRad
	om *= arcsecToRad

	// Sum smallest terms first to limit rounding loss.
	for i := len(nutationTable) - 1; i >= 0; i-- {
		term := nutationTable[i]
		arg := float64(term.nl)*l + float64(term.nlp)*lp +
			float64(term.nf)*f + float64(term.nd)*d + float64(term.nom)*om
		sin, cos := math.Sincos(arg)
		dpsi += (term.psi + term.psiT*t) * sin
		deps += (term.eps + term.epsT*t) * cos
	}

	// Coefficients are in 0.1 mas.
	dpsi *= 1e-4 * arcsecToRad
	deps *= 1e-4 * arcsecToRad
	return dpsi, deps
}

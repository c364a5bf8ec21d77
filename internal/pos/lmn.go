package pos

import "math"

// LMN holds (l,m,n) direction cosines relative to a phase centre. The
// values are dimensionless.
type LMN struct {
	L float64
	M float64
	N float64
}

// Dot returns 2π(u·l + v·m + w·(n−1)), the interferometric phase (in
// radians per wavelength) of this direction for a baseline's UVW.
func (lmn LMN) Dot(uvw UVW) float64 {
	return 2 * math.Pi * (uvw.U*lmn.L + uvw.V*lmn.M + uvw.W*(lmn.N-1.0))
}

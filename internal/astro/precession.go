package astro

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// rotX returns the rotation matrix about the x axis by angle radians.
func rotX(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, s,
		0, -s, c,
	})
}

// rotZ returns the rotation matrix about the z axis by angle radians.
func rotZ(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	})
}

// rotY returns the rotation matrix about the y axis by angle radians.
func rotY(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		c, 0, -s,
		0, 1, 0,
		s, 0, c,
	})
}

// precessionMatrix returns the IAU 1976 precession matrix taking mean
// J2000.0 equatorial coordinates to mean coordinates of date, for t
// Julian centuries of TT since J2000.0.
func precessionMatrix(t float64) *mat.Dense {
	zeta := t * (2306.2181 + t*(0.30188+t*0.017998)) * arcsecToRad
	z := t * (2306.2181 + t*(1.09468+t*0.018203)) * arcsecToRad
	theta := t * (2004.3109 + t*(-0.42665+t*-0.041833)) * arcsecToRad

	var p, tmp mat.Dense
	tmp.Mul(rotY(theta), rotZ(-zeta))
	p.Mul(rotZ(-z), &tmp)
	return &p
}

// nutationMatrix returns the matrix taking mean coordinates of date to
// true coordinates of date.
func nutationMatrix(t float64) *mat.Dense {
	eps0 := meanObliquity(t)
	dpsi, deps := nutation(t)

	var n, tmp mat.Dense
	tmp.Mul(rotZ(-dpsi), rotX(eps0))
	n.Mul(rotX(-(eps0+deps)), &tmp)
	return &n
}

// prenutMatrix returns the combined precession-nutation matrix taking
// mean J2000.0 coordinates to true coordinates of date.
func prenutMatrix(t float64) *mat.Dense {
	var r mat.Dense
	r.Mul(nutationMatrix(t), precessionMatrix(t))
	return &r
}

// applyMatrix applies a 3×3 rotation to an equatorial unit vector.
func applyMatrix(m *mat.Dense, v [3]float64) [3]float64 {
	return [3]float64{
		m.At(0, 0)*v[0] + m.At(0, 1)*v[1] + m.At(0, 2)*v[2],
		m.At(1, 0)*v[0] + m.At(1, 1)*v[1] + m.At(1, 2)*v[2],
		m.At(2, 0)*v[0] + m.At(2, 1)*v[1] + m.At(2, 2)*v[2],
	}
}

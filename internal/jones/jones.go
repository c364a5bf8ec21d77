// Package jones implements 2×2 complex matrix math for instrumental
// polarisation response.
//
// General-purpose linear algebra libraries cannot be told that every
// matrix here is 2×2, so all operations are hand-unrolled closed forms:
// no iteration, no allocation, deterministic results.
package jones

import (
	"fmt"
	"math/cmplx"
)

// Jones is a 2×2 complex matrix stored row-major:
//
//	| 0 1 |
//	| 2 3 |
//
// It represents the linear polarisation transformation applied by one
// antenna at one frequency at one instant.
type Jones [4]complex128

// Identity returns the identity matrix, representing "no correction".
func Identity() Jones {
	return Jones{1, 0, 0, 1}
}

// Zero returns the zero matrix.
func Zero() Jones {
	return Jones{}
}

// NaN returns a matrix with every component set to NaN. AnyNaN reports
// true for it. Used to poison cells whose calibration is undefined.
func NaN() Jones {
	nan := cmplx.NaN()
	return Jones{nan, nan, nan, nan}
}

// AnyNaN reports whether any element of the matrix is NaN.
func (j Jones) AnyNaN() bool {
	return cmplx.IsNaN(j[0]) || cmplx.IsNaN(j[1]) || cmplx.IsNaN(j[2]) || cmplx.IsNaN(j[3])
}

// Mul returns the matrix product j·b.
func (j Jones) Mul(b Jones) Jones {
	return Jones{
		j[0]*b[0] + j[1]*b[2],
		j[0]*b[1] + j[1]*b[3],
		j[2]*b[0] + j[3]*b[2],
		j[2]*b[1] + j[3]*b[3],
	}
}

// H returns the Hermitian conjugate (conjugate transpose) of the matrix.
func (j Jones) H() Jones {
	return Jones{
		cmplx.Conj(j[0]),
		cmplx.Conj(j[2]),
		cmplx.Conj(j[1]),
		cmplx.Conj(j[3]),
	}
}

// MulH returns j·bᴴ.
func (j Jones) MulH(b Jones) Jones {
	return j.Mul(b.H())
}

// Det returns the determinant of the matrix.
func (j Jones) Det() complex128 {
	return j[0]*j[3] - j[1]*j[2]
}

// SingularMatrixError reports that a Jones matrix could not be inverted
// because its determinant magnitude fell below the configured epsilon.
// It is recoverable: callers flag the affected cell rather than aborting
// the block.
type SingularMatrixError struct {
	DetMagnitude float64
	Epsilon      float64
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("jones matrix is singular: |det| %g below epsilon %g",
		e.DetMagnitude, e.Epsilon)
}

// Inv returns the inverse of the matrix. When the determinant magnitude
// is below eps it returns a SingularMatrixError and a NaN matrix.
func (j Jones) Inv(eps float64) (Jones, error) {
	det := j.Det()
	mag := cmplx.Abs(det)
	if mag < eps {
		return NaN(), &SingularMatrixError{DetMagnitude: mag, Epsilon: eps}
	}
	invDet := 1 / det
	return Jones{
		invDet * j[3],
		-invDet * j[1],
		-invDet * j[2],
		invDet * j[0],
	}, nil
}

// Sandwich returns ja·v·jbᴴ, the two-sided application of per-antenna
// responses to a full correlation-matrix visibility.
func Sandwich(ja, v, jb Jones) Jones {
	return ja.Mul(v).MulH(jb)
}

// ApplyVector returns j applied to a raw polarisation vector (x, y).
func (j Jones) ApplyVector(x, y complex128) (complex128, complex128) {
	return j[0]*x + j[1]*y, j[2]*x + j[3]*y
}

// Add returns j + b.
func (j Jones) Add(b Jones) Jones {
	return Jones{j[0] + b[0], j[1] + b[1], j[2] + b[2], j[3] + b[3]}
}

// Sub returns j - b.
func (j Jones) Sub(b Jones) Jones {
	return Jones{j[0] - b[0], j[1] - b[1], j[2] - b[2], j[3] - b[3]}
}

// ScaleReal returns the matrix with every element multiplied by s.
func (j Jones) ScaleReal(s float64) Jones {
	c := complex(s, 0)
	return Jones{j[0] * c, j[1] * c, j[2] * c, j[3] * c}
}

// Scale returns the matrix with every element multiplied by c.
func (j Jones) Scale(c complex128) Jones {
	return Jones{j[0] * c, j[1] * c, j[2] * c, j[3] * c}
}

// PlusAXB accumulates a·b into c: c += a·b. It is the in-place
// accumulate primitive for running sums of matrix products, writing
// into c rather than returning a temporary.
func PlusAXB(c *Jones, a, b Jones) {
	c[0] += a[0]*b[0] + a[1]*b[2]
	c[1] += a[0]*b[1] + a[1]*b[3]
	c[2] += a[2]*b[0] + a[3]*b[2]
	c[3] += a[2]*b[1] + a[3]*b[3]
}

// PlusAHXB accumulates aᴴ·b into c: c += aᴴ·b.
func PlusAHXB(c *Jones, a, b Jones) {
	c[0] += cmplx.Conj(a[0])*b[0] + cmplx.Conj(a[2])*b[2]
	c[1] += cmplx.Conj(a[0])*b[1] + cmplx.Conj(a[2])*b[3]
	c[2] += cmplx.Conj(a[1])*b[0] + cmplx.Conj(a[3])*b[2]
	c[3] += cmplx.Conj(a[1])*b[1] + cmplx.Conj(a[3])*b[3]
}

func (j Jones) String() string {
	return fmt.Sprintf("[[%v, %v] [%v, %v]]", j[0], j[1], j[2], j[3])
}

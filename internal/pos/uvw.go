package pos

import (
	"math"

	"github.com/arraydata/visibility.report/internal/units"
)

// UVW is a baseline coordinate in the frame aligned with a phase centre:
// w towards the phase centre, u east and v north in the sky plane. Units
// are metres; divide by wavelength for the dimensionless form used in
// imaging.
type UVW struct {
	U float64
	V float64
	W float64
}

// UVWFromXYZ rotates a baseline vector in the local equatorial frame into
// UVW for a phase centre given in hour angle coordinates. The rotation is
// fully determined by the two angles of the direction.
func UVWFromXYZ(xyz XYZ, phaseCentre HADec) UVW {
	sHA, cHA := math.Sincos(phaseCentre.HA)
	sDec, cDec := math.Sincos(phaseCentre.Dec)
	return UVW{
		U: sHA*xyz.X + cHA*xyz.Y,
		V: -sDec*cHA*xyz.X + sDec*sHA*xyz.Y + cDec*xyz.Z,
		W: cDec*cHA*xyz.X - cDec*sHA*xyz.Y + sDec*xyz.Z,
	}
}

// Neg returns the UVW of the reversed baseline. Exact negation: the sign
// symmetry computeUVW(b→a) == -computeUVW(a→b) is a correctness invariant
// relied upon by tests and downstream writers.
func (uvw UVW) Neg() UVW {
	return UVW{U: -uvw.U, V: -uvw.V, W: -uvw.W}
}

// InWavelengths scales the coordinate from metres to wavelengths at the
// given frequency.
func (uvw UVW) InWavelengths(freqHz float64) UVW {
	lambda := units.WavelengthMetres(freqHz)
	if lambda == 0 {
		return UVW{}
	}
	return UVW{U: uvw.U / lambda, V: uvw.V / lambda, W: uvw.W / lambda}
}

// Baseline identifies an ordered antenna pair. The canonical convention
// throughout this codebase is A.index < B.index with the baseline vector
// defined as position(A) minus position(B).
type Baseline struct {
	A int
	B int
}

// Swap returns the baseline with its antennas exchanged.
func (b Baseline) Swap() Baseline {
	return Baseline{A: b.B, B: b.A}
}

// CrossBaselines enumerates all cross-correlation baselines for n antennas
// in canonical ascending order: (0,1), (0,2), ..., (n-2,n-1).
// Autocorrelations are excluded.
func CrossBaselines(n int) []Baseline {
	if n < 2 {
		return nil
	}
	out := make([]Baseline, 0, n*(n-1)/2)
	for a := 0; a < n-1; a++ {
		for b := a + 1; b < n; b++ {
			out = append(out, Baseline{A: a, B: b})
		}
	}
	return out
}

// BaselineXYZs maps antenna positions to baseline vectors using the
// canonical convention position(A) minus position(B), iterating baselines
// in canonical ascending order.
func BaselineXYZs(antennas []XYZ) []XYZ {
	baselines := CrossBaselines(len(antennas))
	out := make([]XYZ, len(baselines))
	for i, bl := range baselines {
		out[i] = antennas[bl.A].Sub(antennas[bl.B])
	}
	return out
}

// UVWsFromXYZs computes the UVW of every baseline between the given
// antenna positions for one phase centre, in canonical baseline order.
func UVWsFromXYZs(antennas []XYZ, phaseCentre HADec) []UVW {
	xyzs := BaselineXYZs(antennas)
	out := make([]UVW, len(xyzs))
	for i, xyz := range xyzs {
		out[i] = UVWFromXYZ(xyz, phaseCentre)
	}
	return out
}

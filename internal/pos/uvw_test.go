package pos

import (
	"math"
	"testing"

	"github.com/arraydata/visibility.report/internal/testutil"
)

func TestUVWSignSymmetry(t *testing.T) {
	// Reversing a baseline must negate its UVW exactly, not approximately:
	// the rotation is linear so the equality is bit-for-bit.
	xyz := XYZ{X: 289.5619, Y: -585.675, Z: 337.21}
	directions := []HADec{
		NewHADec(0, 0),
		NewHADec(0.62, -0.46),
		NewHADec(-2.1, 1.2),
	}
	for _, d := range directions {
		fwd := UVWFromXYZ(xyz, d)
		rev := UVWFromXYZ(XYZ{X: -xyz.X, Y: -xyz.Y, Z: -xyz.Z}, d)
		if rev != fwd.Neg() {
			t.Errorf("direction %v: reversed baseline UVW %v != -%v", d, rev, fwd)
		}
	}
}

func TestUVWZenithBoresight(t *testing.T) {
	// A baseline pointing straight at a zenith phase centre has w equal to
	// its full length and u, v of zero.
	lat := -0.4660608448386394
	zenith := NewHADec(0, lat)

	length := 873.25
	boresight := XYZ{
		X: length * math.Cos(lat),
		Y: 0,
		Z: length * math.Sin(lat),
	}
	uvw := UVWFromXYZ(boresight, zenith)
	testutil.AssertClose(t, uvw.U, 0, 1e-9)
	testutil.AssertClose(t, uvw.V, 0, 1e-9)
	testutil.AssertClose(t, uvw.W, length, 1e-9)
}

func TestUVWPreservesLength(t *testing.T) {
	// UVW is a rotation of the baseline vector, so the norm is unchanged.
	xyz := XYZ{X: 120.0, Y: -45.5, Z: 300.25}
	uvw := UVWFromXYZ(xyz, NewHADec(0.83, -0.51))
	norm := math.Sqrt(uvw.U*uvw.U + uvw.V*uvw.V + uvw.W*uvw.W)
	testutil.AssertClose(t, norm, xyz.Norm(), 1e-9)
}

func TestUVWInWavelengths(t *testing.T) {
	uvw := UVW{U: 299.792458, V: 0, W: -299.792458}
	// 1 MHz has a wavelength of ~299.79 m.
	scaled := uvw.InWavelengths(1e6)
	testutil.AssertClose(t, scaled.U, 1.0, 1e-12)
	testutil.AssertClose(t, scaled.W, -1.0, 1e-12)

	if got := (UVW{U: 1}).InWavelengths(0); got != (UVW{}) {
		t.Errorf("zero frequency should zero the coordinate, got %v", got)
	}
}

func TestCrossBaselines(t *testing.T) {
	bls := CrossBaselines(4)
	want := []Baseline{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	if len(bls) != len(want) {
		t.Fatalf("got %d baselines, want %d", len(bls), len(want))
	}
	for i := range want {
		if bls[i] != want[i] {
			t.Errorf("baseline %d = %v, want %v", i, bls[i], want[i])
		}
	}
	if CrossBaselines(1) != nil {
		t.Error("single antenna should produce no baselines")
	}
}

func TestBaselineXYZConvention(t *testing.T) {
	// The baseline vector is position(A) minus position(B) with A < B.
	ants := []XYZ{{X: 10}, {X: 4}}
	bls := BaselineXYZs(ants)
	if len(bls) != 1 {
		t.Fatalf("got %d baselines, want 1", len(bls))
	}
	if bls[0].X != 6 {
		t.Errorf("baseline X = %v, want 6 (a minus b)", bls[0].X)
	}
}

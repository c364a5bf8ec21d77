package pos

import (
	"math"
	"testing"

	"github.com/arraydata/visibility.report/internal/testutil"
)

func TestToLMN(t *testing.T) {
	radec := RADecFromDegrees(62.0, -27.5)
	phaseCentre := RADecFromDegrees(60.0, -27.0)
	lmn := radec.ToLMN(phaseCentre)
	testutil.AssertClose(t, lmn.L, 0.03095623164758603, 1e-10)
	testutil.AssertClose(t, lmn.M, -0.008971846102111436, 1e-10)
	testutil.AssertClose(t, lmn.N, 0.9994804738961642, 1e-10)
}

func TestLMNAtPhaseCentre(t *testing.T) {
	pc := RADecFromDegrees(120.0, -40.0)
	lmn := pc.ToLMN(pc)
	testutil.AssertClose(t, lmn.L, 0, 1e-15)
	testutil.AssertClose(t, lmn.M, 0, 1e-15)
	testutil.AssertClose(t, lmn.N, 1, 1e-15)
}

func TestHADecRoundTrip(t *testing.T) {
	lst := 1.234
	radec := RADecFromDegrees(330.0, -27.0)
	back := RADecFromHADec(radec.ToHADec(lst), lst)
	testutil.AssertClose(t, back.RA, radec.RA, 1e-12)
	testutil.AssertClose(t, back.Dec, radec.Dec, 1e-12)
}

func TestSeparation(t *testing.T) {
	a := RADecFromDegrees(0, 0)
	b := RADecFromDegrees(90, 0)
	testutil.AssertClose(t, a.Separation(b), math.Pi/2, 1e-12)

	// Small separations must not lose precision to cancellation.
	c := RADecFromDegrees(10, 20)
	d := RADecFromDegrees(10, 20.001)
	testutil.AssertClose(t, c.Separation(d), 0.001*math.Pi/180.0, 1e-12)
}

func TestUnitVectorRoundTrip(t *testing.T) {
	cases := []RADec{
		RADecFromDegrees(0, 0),
		RADecFromDegrees(60, -30),
		RADecFromDegrees(359, 80),
		RADecFromDegrees(180, -89),
	}
	for _, want := range cases {
		got := RADecFromUnitVector(want.UnitVector())
		testutil.AssertClose(t, got.RA, want.RA, 1e-12)
		testutil.AssertClose(t, got.Dec, want.Dec, 1e-12)
	}
}

func TestRADecString(t *testing.T) {
	s := RADecFromDegrees(60.0, -27.5).String()
	if s == "" {
		t.Fatal("empty String()")
	}
}

func TestAltAz(t *testing.T) {
	lat := -0.4660608448386394 // -26.7033° geodetic latitude

	// A source at the zenith: dec equals latitude, hour angle zero.
	alt, _ := NewHADec(0, lat).ToAltAz(lat)
	testutil.AssertClose(t, alt, math.Pi/2, 1e-12)

	// A source due south of zenith on the meridian.
	alt, az := NewHADec(0, lat-0.1).ToAltAz(lat)
	testutil.AssertClose(t, alt, math.Pi/2-0.1, 1e-12)
	testutil.AssertClose(t, az, math.Pi, 1e-12)

	// A source due north of zenith on the meridian.
	alt, az = NewHADec(0, lat+0.1).ToAltAz(lat)
	testutil.AssertClose(t, alt, math.Pi/2-0.1, 1e-12)
	testutil.AssertClose(t, az, 0, 1e-12)
}

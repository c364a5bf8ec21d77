package astro

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arraydata/visibility.report/internal/pos"
	"github.com/arraydata/visibility.report/internal/testutil"
)

func TestEarthVelocityMagnitude(t *testing.T) {
	// |v|/c must stay close to the aberration constant year round.
	kappa := aberrationConstant * arcsecToRad
	for _, gps := range []float64{1.0e9, 1.01e9, 1.02e9, 1.03e9, 1.04e9} {
		v := earthVelocity(FromGPSSeconds(gps).JulianCenturiesTT())
		mag := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if math.Abs(mag-kappa)/kappa > 0.05 {
			t.Errorf("gps %v: |v|/c = %v, want within 5%% of %v", gps, mag, kappa)
		}
	}
}

func TestAberrationShiftIsBounded(t *testing.T) {
	v := earthVelocity(FromGPSSeconds(1090008642).JulianCenturiesTT())
	d := pos.RADecFromDegrees(100, -40)
	shifted := pos.RADecFromUnitVector(aberrate(d.UnitVector(), v))
	sep := d.Separation(shifted)
	if sep > 21*math.Pi/(180*3600) {
		t.Fatalf("aberration shifted a direction by %v rad, more than 21 arcsec", sep)
	}
}

func TestApparentMeanRoundTrip(t *testing.T) {
	directions := []pos.RADec{
		pos.RADecFromDegrees(0, -27),
		pos.RADecFromDegrees(62, -27.5),
		pos.RADecFromDegrees(190, 35),
		pos.RADecFromDegrees(310, -75),
	}
	// Epochs spanning three decades.
	epochs := []float64{0.7e9, 1.0e9, 1.2e9, 1.4e9}

	tol := testutil.ArcsecToRadians(0.01)
	for _, gps := range epochs {
		e := FromGPSSeconds(gps)
		for _, d := range directions {
			apparent, err := ToApparent(e, d)
			require.NoError(t, err)
			back, err := ToMean(e, apparent)
			require.NoError(t, err)
			if sep := d.Separation(back); sep > tol {
				t.Errorf("gps %v %v: round trip off by %v rad", gps, d, sep)
			}
		}
	}
}

func TestApparentShiftIsModest(t *testing.T) {
	// 2014 is ~14 years from J2000: precession moves directions by
	// around 12 arcmin, aberration by up to 20 arcsec.
	e := FromGPSSeconds(1090008642)
	d := pos.RADecFromDegrees(0, -27)
	apparent, err := ToApparent(e, d)
	require.NoError(t, err)
	sep := d.Separation(apparent)
	if sep < testutil.ArcsecToRadians(60) || sep > testutil.ArcsecToRadians(1500) {
		t.Fatalf("apparent shift %v rad outside plausible range", sep)
	}
}

func TestToApparentRejectsInvalidEpoch(t *testing.T) {
	_, err := ToApparent(FromGPSSeconds(-1e10), pos.RADecFromDegrees(0, -27))
	testutil.AssertError(t, err)
	_, err = ToMean(FromGPSSeconds(-1e10), pos.RADecFromDegrees(0, -27))
	testutil.AssertError(t, err)
}

func TestLocalAltAz(t *testing.T) {
	site := pos.LatLonAlt{LatitudeRad: testLatRad, LongitudeRad: testLongRad}
	e := FromGPSSeconds(1090008642)

	// A direction at the site's declination transiting near the local
	// sidereal time should sit close to the zenith.
	lmst, err := LMST(e, site.LongitudeRad)
	require.NoError(t, err)
	overhead := pos.NewRADec(lmst, site.LatitudeRad)
	alt, _, err := LocalAltAz(e, overhead, site)
	require.NoError(t, err)
	if alt < 85*math.Pi/180 {
		t.Errorf("transit altitude %v rad, want near zenith", alt)
	}

	// The opposite direction is below the horizon.
	anti := pos.NewRADec(lmst+math.Pi, -site.LatitudeRad)
	alt, az, err := LocalAltAz(e, anti, site)
	require.NoError(t, err)
	if alt > 0 {
		t.Errorf("antipodal direction has altitude %v rad, want below horizon", alt)
	}
	if az < 0 || az >= 2*math.Pi {
		t.Errorf("azimuth %v rad outside [0, 2π)", az)
	}
}

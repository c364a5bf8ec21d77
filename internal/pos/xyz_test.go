package pos

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arraydata/visibility.report/internal/testutil"
)

var testLocation = LatLonAlt{
	LatitudeRad:  -0.4660608448386394, // -26.7033°
	LongitudeRad: 2.0362898668561042,  // 116.6708°
	HeightM:      377.827,
}

func TestENHXYZRoundTrip(t *testing.T) {
	lat := testLocation.LatitudeRad
	cases := []ENH{
		{E: 0, N: 0, H: 0},
		{E: 150.5, N: -212.3, H: 4.2},
		{E: -1200, N: 875, H: -12.7},
	}
	for _, enh := range cases {
		back := enh.ToXYZ(lat).ToENH(lat)
		testutil.AssertClose(t, back.E, enh.E, 1e-9)
		testutil.AssertClose(t, back.N, enh.N, 1e-9)
		testutil.AssertClose(t, back.H, enh.H, 1e-9)
	}
}

func TestENHToXYZKnownValues(t *testing.T) {
	// At latitude zero: x = h, y = e, z = n.
	xyz := ENH{E: 1, N: 2, H: 3}.ToXYZ(0)
	testutil.AssertClose(t, xyz.X, 3, 1e-15)
	testutil.AssertClose(t, xyz.Y, 1, 1e-15)
	testutil.AssertClose(t, xyz.Z, 2, 1e-15)
}

func TestGeocentricMagnitude(t *testing.T) {
	gc := testLocation.ToGeocentric()
	r := math.Sqrt(gc.X*gc.X + gc.Y*gc.Y + gc.Z*gc.Z)
	// Between polar and equatorial Earth radii (plus site height).
	assert.Greater(t, r, 6.356e6)
	assert.Less(t, r, 6.379e6)
	// Southern hemisphere site.
	assert.Negative(t, gc.Z)
}

func TestLocalGeocentricRoundTrip(t *testing.T) {
	xyz := XYZ{X: 456.25, Y: -1023.5, Z: 88.8}
	gc := LocalToGeocentric(xyz, testLocation)
	back := gc.ToLocal(testLocation)
	testutil.AssertClose(t, back.X, xyz.X, 1e-6)
	testutil.AssertClose(t, back.Y, xyz.Y, 1e-6)
	testutil.AssertClose(t, back.Z, xyz.Z, 1e-6)
}

func TestArrayLayout(t *testing.T) {
	layout, err := NewArrayLayout(testLocation, []Antenna{
		{ID: 12, Name: "Tile012", Position: ENH{E: 5, N: 0, H: 0}},
		{ID: 4, Name: "Tile004", Position: ENH{E: 0, N: 10, H: 0}},
		{ID: 7, Name: "Tile007", Position: ENH{E: -3, N: 2, H: 1}, Flagged: true},
	})
	require.NoError(t, err)
	require.Equal(t, 3, layout.Len())

	// Antennas come back in ascending ID order regardless of input order.
	ants := layout.Antennas()
	assert.Equal(t, []int{4, 7, 12}, []int{ants[0].ID, ants[1].ID, ants[2].ID})

	got, err := layout.Get(7)
	require.NoError(t, err)
	assert.True(t, got.Flagged)

	_, err = layout.Get(99)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr), "want ConfigError, got %T", err)

	assert.Len(t, layout.XYZs(), 3)
}

func TestArrayLayoutRejectsDuplicatesAndEmpty(t *testing.T) {
	_, err := NewArrayLayout(testLocation, nil)
	testutil.AssertError(t, err)

	_, err = NewArrayLayout(testLocation, []Antenna{{ID: 1}, {ID: 1}})
	testutil.AssertError(t, err)
}

func TestGeocentricAntennaLookup(t *testing.T) {
	layout, err := NewArrayLayout(testLocation, []Antenna{
		{ID: 0, Position: ENH{}},
	})
	require.NoError(t, err)

	gc, err := layout.Geocentric(0)
	require.NoError(t, err)
	ref := testLocation.ToGeocentric()
	// The reference antenna sits at the array reference position.
	testutil.AssertClose(t, gc.X, ref.X, 1e-6)
	testutil.AssertClose(t, gc.Y, ref.Y, 1e-6)
	testutil.AssertClose(t, gc.Z, ref.Z, 1e-6)

	_, err = layout.Geocentric(42)
	testutil.AssertError(t, err)
}

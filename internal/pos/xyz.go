package pos

import (
	"fmt"
	"math"
)

// WGS84 reference ellipsoid.
const (
	wgs84SemiMajorM = 6378137.0
	wgs84Flattening = 1.0 / 298.257223563
	wgs84EccSquared = wgs84Flattening * (2.0 - wgs84Flattening)
)

// ENH is an antenna offset in the local tangent plane: east, north and
// height above the array reference position, in metres.
type ENH struct {
	E float64
	N float64
	H float64
}

// ToXYZ rotates a tangent-plane offset into the local equatorial XYZ frame
// for an array at the given geodetic latitude: x points from the array to
// where the meridian meets the equator, y east, z to the north celestial
// pole.
func (enh ENH) ToXYZ(latitudeRad float64) XYZ {
	sLat, cLat := math.Sincos(latitudeRad)
	return XYZ{
		X: -enh.N*sLat + enh.H*cLat,
		Y: enh.E,
		Z: enh.N*cLat + enh.H*sLat,
	}
}

// XYZ is a position or baseline in the local equatorial frame, in metres.
// See ENH.ToXYZ for the axis convention.
type XYZ struct {
	X float64
	Y float64
	Z float64
}

// ToENH is the inverse of ENH.ToXYZ.
func (xyz XYZ) ToENH(latitudeRad float64) ENH {
	sLat, cLat := math.Sincos(latitudeRad)
	return ENH{
		E: xyz.Y,
		N: -xyz.X*sLat + xyz.Z*cLat,
		H: xyz.X*cLat + xyz.Z*sLat,
	}
}

// Sub returns xyz - other.
func (xyz XYZ) Sub(other XYZ) XYZ {
	return XYZ{X: xyz.X - other.X, Y: xyz.Y - other.Y, Z: xyz.Z - other.Z}
}

// Norm returns the Euclidean length of the vector in metres.
func (xyz XYZ) Norm() float64 {
	return math.Sqrt(xyz.X*xyz.X + xyz.Y*xyz.Y + xyz.Z*xyz.Z)
}

// XYZGeocentric is an Earth-centred, Earth-fixed position in metres.
type XYZGeocentric struct {
	X float64
	Y float64
	Z float64
}

// LatLonAlt is a geodetic position: latitude and longitude in radians,
// height above the WGS84 ellipsoid in metres.
type LatLonAlt struct {
	// LatitudeRad is the geodetic latitude in radians.
	LatitudeRad float64
	// LongitudeRad is the longitude in radians, east positive.
	LongitudeRad float64
	// HeightM is the height above the ellipsoid in metres.
	HeightM float64
}

// ToGeocentric converts a geodetic position to geocentric XYZ on the
// WGS84 ellipsoid.
func (lla LatLonAlt) ToGeocentric() XYZGeocentric {
	sLat, cLat := math.Sincos(lla.LatitudeRad)
	sLon, cLon := math.Sincos(lla.LongitudeRad)
	n := wgs84SemiMajorM / math.Sqrt(1.0-wgs84EccSquared*sLat*sLat)
	return XYZGeocentric{
		X: (n + lla.HeightM) * cLat * cLon,
		Y: (n + lla.HeightM) * cLat * sLon,
		Z: (n*(1.0-wgs84EccSquared) + lla.HeightM) * sLat,
	}
}

func (lla LatLonAlt) String() string {
	return fmt.Sprintf("{ latitude: %.4f°, longitude: %.4f°, height: %gm }",
		lla.LatitudeRad*180.0/math.Pi, lla.LongitudeRad*180.0/math.Pi, lla.HeightM)
}

// ToLocal expresses a geocentric position in the local equatorial XYZ
// frame of an array at the given reference location: translate to the
// array position, then rotate about the pole by the array longitude.
func (gc XYZGeocentric) ToLocal(ref LatLonAlt) XYZ {
	refGc := ref.ToGeocentric()
	dx := gc.X - refGc.X
	dy := gc.Y - refGc.Y
	dz := gc.Z - refGc.Z
	sLon, cLon := math.Sincos(ref.LongitudeRad)
	return XYZ{
		X: cLon*dx + sLon*dy,
		Y: -sLon*dx + cLon*dy,
		Z: dz,
	}
}

// LocalToGeocentric is the inverse of XYZGeocentric.ToLocal.
func LocalToGeocentric(xyz XYZ, ref LatLonAlt) XYZGeocentric {
	refGc := ref.ToGeocentric()
	sLon, cLon := math.Sincos(ref.LongitudeRad)
	return XYZGeocentric{
		X: refGc.X + cLon*xyz.X - sLon*xyz.Y,
		Y: refGc.Y + sLon*xyz.X + cLon*xyz.Y,
		Z: refGc.Z + xyz.Z,
	}
}

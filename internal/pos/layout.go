package pos

import (
	"fmt"
	"sort"
)

// ConfigError reports missing or inconsistent observation metadata, such
// as a lookup for an antenna that was never loaded. It is fatal to the
// observation load that triggered it.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

func configErrorf(format string, v ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, v...)}
}

// Antenna is one element of the array: a stable identifier, a
// tangent-plane position and a flag that excludes it from processing.
type Antenna struct {
	// ID is the stable identifier from the observation metadata.
	ID int
	// Name is the human-readable station name, if any.
	Name string
	// Position is the tangent-plane offset from the array reference.
	Position ENH
	// Flagged excludes the antenna from all baseline computation.
	Flagged bool
}

// ArrayLayout holds the antennas of one observation. It is loaded once
// per observation and read-only thereafter, so it may be shared freely
// across worker goroutines.
type ArrayLayout struct {
	// Location is the array reference position on the Earth.
	Location LatLonAlt

	antennas []Antenna
	byID     map[int]int // antenna ID -> index into antennas
}

// NewArrayLayout builds a layout from an antenna table. Antennas are kept
// in ascending ID order regardless of input order; a duplicated ID is a
// ConfigError.
func NewArrayLayout(location LatLonAlt, antennas []Antenna) (*ArrayLayout, error) {
	if len(antennas) == 0 {
		return nil, configErrorf("antenna table is empty")
	}
	sorted := make([]Antenna, len(antennas))
	copy(sorted, antennas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[int]int, len(sorted))
	for i, ant := range sorted {
		if _, ok := byID[ant.ID]; ok {
			return nil, configErrorf("duplicate antenna id %d", ant.ID)
		}
		byID[ant.ID] = i
	}
	return &ArrayLayout{Location: location, antennas: sorted, byID: byID}, nil
}

// Len returns the number of antennas in the layout, flagged included.
func (l *ArrayLayout) Len() int { return len(l.antennas) }

// Antennas returns the antennas in ascending ID order. The returned slice
// must not be modified.
func (l *ArrayLayout) Antennas() []Antenna { return l.antennas }

// Get looks up an antenna by its identifier.
func (l *ArrayLayout) Get(id int) (Antenna, error) {
	i, ok := l.byID[id]
	if !ok {
		return Antenna{}, configErrorf("unknown antenna id %d", id)
	}
	return l.antennas[i], nil
}

// XYZs returns every antenna's position in the local equatorial frame, in
// ascending ID order. Flagged antennas are included so that baseline
// indexing stays dense; callers exclude them via flags on the data.
func (l *ArrayLayout) XYZs() []XYZ {
	out := make([]XYZ, len(l.antennas))
	for i, ant := range l.antennas {
		out[i] = ant.Position.ToXYZ(l.Location.LatitudeRad)
	}
	return out
}

// Geocentric returns an antenna's absolute position on the Earth.
func (l *ArrayLayout) Geocentric(id int) (XYZGeocentric, error) {
	ant, err := l.Get(id)
	if err != nil {
		return XYZGeocentric{}, err
	}
	xyz := ant.Position.ToXYZ(l.Location.LatitudeRad)
	return LocalToGeocentric(xyz, l.Location), nil
}

package astro

import (
	"fmt"
	"time"

	"github.com/arraydata/visibility.report/internal/units"
)

// FrameError reports a time or coordinate reduction requested outside the
// validity range of the model. It is fatal to the request that raised it.
type FrameError struct {
	Msg string
}

func (e *FrameError) Error() string { return "frame: " + e.Msg }

func frameErrorf(format string, v ...interface{}) *FrameError {
	return &FrameError{Msg: fmt.Sprintf(format, v...)}
}

// Epoch is an instant on the GPS time scale, which is continuous (no leap
// seconds) and offset from TAI by a constant 19 s. All internal
// computation uses this one scale; conversions to and from calendar time
// happen only at the boundary, via FromTime and Time.
type Epoch struct {
	gps float64 // seconds since the GPS epoch, 1980-01-06T00:00:00 UTC
}

const (
	// gpsEpochUnix is the Unix timestamp of the GPS epoch.
	gpsEpochUnix = 315964800
	// gpsEpochMJD is the MJD (UTC) of the GPS epoch.
	gpsEpochMJD = 44244.0
	// taiMinusGPS is the constant offset between TAI and GPS, seconds.
	taiMinusGPS = 19.0
	// ttMinusTAI is the constant offset between TT and TAI, seconds.
	ttMinusTAI = 32.184
	// mjdToJD converts a Modified Julian Date to a Julian Date.
	mjdToJD = 2400000.5
	// j2000JD is the Julian Date of the J2000.0 epoch (TT).
	j2000JD = 2451545.0
)

// leapEntry is one step of the UTC-TAI offset table.
type leapEntry struct {
	mjd     float64 // MJD (UTC) at which the offset takes effect
	deltaAT float64 // TAI - UTC in seconds from that date
}

// deltaATTable is the IERS leap-second history since the start of modern
// UTC. Read-only; extended by hand when the IERS announces a new leap
// second.
var deltaATTable = []leapEntry{
	{41317, 10}, {41499, 11}, {41683, 12}, {42048, 13}, {42413, 14},
	{42778, 15}, {43144, 16}, {43509, 17}, {43874, 18}, {44239, 19},
	{44786, 20}, {45151, 21}, {45516, 22}, {46247, 23}, {47161, 24},
	{47892, 25}, {48257, 26}, {48804, 27}, {49169, 28}, {49534, 29},
	{50083, 30}, {50630, 31}, {51179, 32}, {53736, 33}, {54832, 34},
	{56109, 35}, {57204, 36}, {57754, 37},
}

// Validity range for frame reductions. The lower bound is the start of
// the leap-second table; the upper bound keeps the precession series well
// inside its quoted accuracy.
const (
	validityStartMJD = 41317.0 // 1972-01-01
	validityEndMJD   = 88069.0 // 2100-01-01
)

// deltaATForMJD returns TAI-UTC at the given MJD (UTC). Epochs before the
// table start return the first entry; callers enforcing validity use
// checkValidity instead.
func deltaATForMJD(mjd float64) float64 {
	dat := deltaATTable[0].deltaAT
	for _, entry := range deltaATTable {
		if mjd >= entry.mjd {
			dat = entry.deltaAT
		}
	}
	return dat
}

// FromGPSSeconds builds an Epoch from seconds since the GPS epoch, the
// native timestamp scale of the correlator.
func FromGPSSeconds(s float64) Epoch {
	return Epoch{gps: s}
}

// FromTime builds an Epoch from a calendar instant.
func FromTime(t time.Time) Epoch {
	unix := float64(t.UnixNano()) * 1e-9
	mjd := 40587.0 + unix/units.SecondsPerDay
	dat := deltaATForMJD(mjd)
	// Unix time pretends leap seconds never happened; GPS time counts
	// them, so add the leap seconds inserted since the GPS epoch.
	return Epoch{gps: unix - gpsEpochUnix + (dat - taiMinusGPS)}
}

// GPSSeconds returns the epoch as seconds since the GPS epoch.
func (e Epoch) GPSSeconds() float64 { return e.gps }

// AddSeconds returns the epoch advanced by s seconds.
func (e Epoch) AddSeconds(s float64) Epoch {
	return Epoch{gps: e.gps + s}
}

// Sub returns e minus other in seconds.
func (e Epoch) Sub(other Epoch) float64 {
	return e.gps - other.gps
}

// Before reports whether e precedes other.
func (e Epoch) Before(other Epoch) bool { return e.gps < other.gps }

// MJDUTC returns the epoch as a Modified Julian Date on the UTC scale.
// The leap-second offset depends on the result, so resolve it with one
// fixed-point refinement.
func (e Epoch) MJDUTC() float64 {
	mjd := gpsEpochMJD + e.gps/units.SecondsPerDay
	for i := 0; i < 2; i++ {
		dat := deltaATForMJD(mjd)
		mjd = gpsEpochMJD + (e.gps-(dat-taiMinusGPS))/units.SecondsPerDay
	}
	return mjd
}

// JDUTC returns the epoch as a Julian Date on the UTC scale.
func (e Epoch) JDUTC() float64 {
	return e.MJDUTC() + mjdToJD
}

// JulianCenturiesTT returns Julian centuries of TT elapsed since J2000.0,
// the time argument of the precession and nutation series.
func (e Epoch) JulianCenturiesTT() float64 {
	jdTT := gpsEpochMJD + mjdToJD + (e.gps+taiMinusGPS+ttMinusTAI)/units.SecondsPerDay
	return (jdTT - j2000JD) / 36525.0
}

// Time returns the epoch as calendar time in UTC, truncated to nanosecond
// resolution.
func (e Epoch) Time() time.Time {
	mjd := e.MJDUTC()
	dat := deltaATForMJD(mjd)
	unix := e.gps + gpsEpochUnix - (dat - taiMinusGPS)
	sec := int64(unix)
	nsec := int64((unix - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

func (e Epoch) String() string {
	return fmt.Sprintf("%s (gps %.3f)", e.Time().Format(time.RFC3339Nano), e.gps)
}

// checkValidity returns a FrameError when the epoch falls outside the
// range the reduction model is good for.
func checkValidity(e Epoch) error {
	mjd := e.MJDUTC()
	if mjd < validityStartMJD || mjd > validityEndMJD {
		return frameErrorf("epoch %s outside reduction model validity (MJD %.1f..%.1f)",
			e, validityStartMJD, validityEndMJD)
	}
	return nil
}

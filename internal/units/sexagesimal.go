package units

import (
	"fmt"
	"math"
)

// DegreesToHMS formats an angle in degrees as a sexagesimal
// hours/minutes/seconds string (right ascension style), e.g. "04h00m00.00s".
func DegreesToHMS(deg float64) string {
	hours := NormalizeAngle(deg*math.Pi/180.0) * 12.0 / math.Pi
	h := math.Floor(hours)
	minutes := (hours - h) * 60.0
	m := math.Floor(minutes)
	s := (minutes - m) * 60.0
	// Guard against 59.999... rounding up to 60 in the formatted output.
	if s >= 59.995 {
		s = 0
		m++
	}
	if m >= 60 {
		m = 0
		h++
	}
	if h >= 24 {
		h -= 24
	}
	return fmt.Sprintf("%02.0fh%02.0fm%05.2fs", h, m, s)
}

// DegreesToDMS formats an angle in degrees as a signed sexagesimal
// degrees/arcminutes/arcseconds string (declination style), e.g. "-27d59m59.00s".
func DegreesToDMS(deg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	d := math.Floor(deg)
	minutes := (deg - d) * 60.0
	m := math.Floor(minutes)
	s := (minutes - m) * 60.0
	if s >= 59.995 {
		s = 0
		m++
	}
	if m >= 60 {
		m = 0
		d++
	}
	return fmt.Sprintf("%s%02.0fd%02.0fm%05.2fs", sign, d, m, s)
}

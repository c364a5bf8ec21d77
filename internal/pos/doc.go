// Package pos contains the positional astronomy value types used by the
// visibility pipeline: celestial directions (RADec, HADec, LMN), antenna
// coordinates (ENH, XYZ, geocentric) and baseline UVW coordinates.
//
// All angles are radians and all lengths are metres unless a name says
// otherwise. Every type here is a cheap immutable value; conversions return
// new values rather than mutating receivers.
//
// Coordinate conventions follow Interferometry and Synthesis in Radio
// Astronomy (3rd edition): w points towards the phase centre, u towards
// east and v towards north in the sky plane.
package pos
